package usr

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/unit"
)

// Cryptography faults. The registry-level user errors live in pkg/kern.
var (
	ErrCreatePrivKey = errors.New("create private key fault")
	ErrCreatePubKey  = errors.New("create public key fault")
	ErrSign          = errors.New("sign fault")
	ErrSignVerify    = errors.New("sign verify fault")
	ErrHashVerify    = errors.New("hash verify fault")
	ErrDecode        = errors.New("decode fault")
)

const signLen = 64 // raw r||s over P-256

// Usr is a named identity with a P-256 key pair. A user without a
// private key may verify but not sign.
type Usr struct {
	Name    string
	PubKey  string // base64 SEC1 compressed point
	privKey string // base64 raw scalar
}

// New generates a fresh key pair from the entropy driver and returns
// the user together with a textual rendering suitable for persistence.
func New(name string, rnd drv.Rnd) (Usr, string, error) {
	var seed [32]byte
	if err := rnd.GetBytes(seed[:]); err != nil {
		return Usr{}, "", fmt.Errorf("usr: %w", err)
	}

	priv, err := privFromBytes(seed[:])
	if err != nil {
		return Usr{}, "", err
	}

	pubKey := base64.StdEncoding.EncodeToString(
		elliptic.MarshalCompressed(elliptic.P256(), priv.X, priv.Y))
	privKey := base64.StdEncoding.EncodeToString(seed[:])

	u := Usr{Name: name, PubKey: pubKey, privKey: privKey}
	out := fmt.Sprintf("{ath:`%s` pub:`%s` priv:`%s`}", name, pubKey, privKey)
	return u, out, nil
}

// Guest builds a public-only user: verification works, signing fails.
func Guest(name, pubKey string) (Usr, error) {
	return Usr{Name: name, PubKey: pubKey}, nil
}

// Login builds a full user from persisted keys.
func Login(name, privKey, pubKey string) (Usr, error) {
	return Usr{Name: name, PubKey: pubKey, privKey: privKey}, nil
}

// HasPriv reports whether the user can sign.
func (u Usr) HasPriv() bool { return u.privKey != "" }

// Hash returns the base64 SHA3-256 of the unit's canonical bytes.
func Hash(m *unit.Unit) string {
	h := sha3.Sum256(m.Bytes())
	return base64.StdEncoding.EncodeToString(h[:])
}

// Sign signs the canonical bytes of the unit, returning the base64
// raw r||s signature.
func (u Usr) Sign(m *unit.Unit) (string, error) {
	if u.privKey == "" {
		return "", ErrSign
	}
	seed, err := base64.StdEncoding.DecodeString(u.privKey)
	if err != nil {
		return "", ErrDecode
	}
	priv, err := privFromBytes(seed)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(m.Bytes())
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return "", ErrSign
	}

	var sig [signLen]byte
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return base64.StdEncoding.EncodeToString(sig[:]), nil
}

// Verify recomputes the hash of the unit's canonical bytes and checks
// the signature against the user's public key.
func (u Usr) Verify(m *unit.Unit, sign, hash string) error {
	raw := m.Bytes()

	h := sha3.Sum256(raw)
	if base64.StdEncoding.EncodeToString(h[:]) != hash {
		return ErrHashVerify
	}

	sig, err := base64.StdEncoding.DecodeString(sign)
	if err != nil {
		return ErrDecode
	}
	if len(sig) != signLen {
		return ErrSignVerify
	}

	pubRaw, err := base64.StdEncoding.DecodeString(u.PubKey)
	if err != nil {
		return ErrDecode
	}
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), pubRaw)
	if x == nil {
		return ErrCreatePubKey
	}
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}

	digest := sha256.Sum256(raw)
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if !ecdsa.Verify(pub, digest[:], r, s) {
		return ErrSignVerify
	}
	return nil
}

func (u Usr) String() string {
	priv := "-"
	if u.privKey != "" {
		priv = ".."
	}
	if strings.Contains(u.Name, " ") {
		return fmt.Sprintf("{ath:`%s` pub:%s priv:%s}", u.Name, u.PubKey, priv)
	}
	return fmt.Sprintf("{ath:%s pub:%s priv:%s}", u.Name, u.PubKey, priv)
}

func privFromBytes(seed []byte) (*ecdsa.PrivateKey, error) {
	if len(seed) != 32 {
		return nil, ErrCreatePrivKey
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(seed)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, ErrCreatePrivKey
	}

	priv := &ecdsa.PrivateKey{D: d}
	priv.Curve = curve
	priv.X, priv.Y = curve.ScalarBaseMult(seed)
	return priv, nil
}
