// Package extcrypto provides hashing and identifier functions.
//
// MD5 and SHA-1 are offered for fingerprinting only.
package extcrypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/gojslt/pkg/ext/extutil"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/value"
)

// URI is the name the crypto module is imported by.
const URI = "ext:crypto"

// All returns every function of the package.
func All() []functions.Function {
	return []functions.Function{
		Hash(),
		HMAC(),
		Base64Encode(),
		Base64Decode(),
		UUIDv5(),
		UUIDv7(),
	}
}

// Module returns the functions of All as an importable module.
func Module() *functions.MapModule {
	return extutil.Module(All())
}

func newHash(name, algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New, nil
	case "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	}
	return nil, extutil.ArgError(name, "unsupported algorithm %q; use md5, sha1, sha256, sha384 or sha512", algorithm)
}

// Hash returns hash(str, algorithm): the lowercase hex digest of str.
func Hash() *functions.FunctionDef {
	const name = "hash"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		alg, _, err := extutil.Text(name, args[1])
		if err != nil {
			return nil, err
		}
		h, err := newHash(name, alg)
		if err != nil {
			return nil, err
		}
		d := h()
		d.Write([]byte(s))
		return value.Text(hex.EncodeToString(d.Sum(nil))), nil
	})
}

// HMAC returns hmac(str, key, algorithm) as lowercase hex.
func HMAC() *functions.FunctionDef {
	const name = "hmac"
	return functions.Define(name, 3, 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		key, _, err := extutil.Text(name, args[1])
		if err != nil {
			return nil, err
		}
		alg, _, err := extutil.Text(name, args[2])
		if err != nil {
			return nil, err
		}
		h, err := newHash(name, alg)
		if err != nil {
			return nil, err
		}
		mac := hmac.New(h, []byte(key))
		mac.Write([]byte(s))
		return value.Text(hex.EncodeToString(mac.Sum(nil))), nil
	})
}

// Base64Encode returns base64-encode(str) using the standard alphabet.
func Base64Encode() *functions.FunctionDef {
	const name = "base64-encode"
	return functions.Define(name, 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		return value.Text(base64.StdEncoding.EncodeToString([]byte(s))), nil
	})
}

// Base64Decode returns base64-decode(str).
func Base64Decode() *functions.FunctionDef {
	const name = "base64-decode"
	return functions.Define(name, 1, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		s, ok, err := extutil.Text(name, args[0])
		if err != nil || !ok {
			return value.Null, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, extutil.ArgError(name, "invalid base64 input: %v", err)
		}
		return value.Text(b), nil
	})
}

// UUIDv5 returns uuid-v5(namespace, name): the name-based SHA-1 UUID of name
// within namespace. namespace is a UUID or one of "dns", "url", "oid" and
// "x500".
func UUIDv5() *functions.FunctionDef {
	const name = "uuid-v5"
	return functions.Define(name, 2, 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		ns, _, err := extutil.Text(name, args[0])
		if err != nil {
			return nil, err
		}
		s, ok, err := extutil.Text(name, args[1])
		if err != nil || !ok {
			return value.Null, err
		}
		var space uuid.UUID
		switch strings.ToLower(ns) {
		case "dns":
			space = uuid.NameSpaceDNS
		case "url":
			space = uuid.NameSpaceURL
		case "oid":
			space = uuid.NameSpaceOID
		case "x500":
			space = uuid.NameSpaceX500
		default:
			if space, err = uuid.Parse(ns); err != nil {
				return nil, extutil.ArgError(name, "invalid namespace %q", ns)
			}
		}
		return value.Text(uuid.NewSHA1(space, []byte(s)).String()), nil
	})
}

// UUIDv7 returns uuid-v7(): a time-ordered random UUID.
func UUIDv7() *functions.FunctionDef {
	const name = "uuid-v7"
	return functions.Define(name, 0, 0, func(value.Value, []value.Value) (value.Value, error) {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, extutil.ArgError(name, "%v", err)
		}
		return value.Text(id.String()), nil
	})
}
