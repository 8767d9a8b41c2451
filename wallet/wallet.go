// Package wallet creates deposit addresses and seals their custodial keys.
package wallet

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

type Account struct {
	Address    string
	PrivateKey string
}

type Generator struct {
	sealer *Sealer
}

// NewGenerator returns a generator that seals private keys with sealer, or leaves them
// as hex when sealer is nil.
func NewGenerator(sealer *Sealer) *Generator {
	return &Generator{sealer: sealer}
}

func (g *Generator) Generate() (Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return Account{}, errors.Wrap(err, "generate key")
	}

	acct := Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}
	if g.sealer != nil {
		if acct.PrivateKey, err = g.sealer.Seal(acct.PrivateKey); err != nil {
			return Account{}, err
		}
	}
	return acct, nil
}

// IsAddress reports whether s is a 0x-prefixed or bare 20-byte hex address.
func IsAddress(s string) bool {
	return common.IsHexAddress(s)
}

// Checksum returns address in its EIP-55 mixed-case form. address must pass IsAddress.
func Checksum(address string) string {
	return common.HexToAddress(address).Hex()
}

const sealedPrefix = "sb1:"

type Sealer struct {
	key [32]byte
}

func NewSealer(key [32]byte) *Sealer {
	return &Sealer{key: key}
}

func (s *Sealer) Seal(plain string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", errors.Wrap(err, "read nonce")
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

func (s *Sealer) open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return "", errors.New("value is not sealed")
	}
	box, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", errors.Wrap(err, "decode sealed value")
	}
	if len(box) < 24 {
		return "", errors.New("sealed value too short")
	}

	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed value failed authentication")
	}
	return string(plain), nil
}
