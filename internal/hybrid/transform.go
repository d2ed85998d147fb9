package hybrid

import (
	"fmt"
	"math/big"

	"license-manager/internal/domain"
)

// PKCS#1 v1.5 ブロックタイプ1のパディングは最低8バイト必要。
const (
	minPaddingLen   = 8
	paddingOverhead = 3 + minPaddingLen
)

// MaxWrapSize は鍵でラップできる最大バイト数を返す。
func MaxWrapSize(k *Key) int {
	return k.Size() - paddingOverhead
}

// privateTransform は 00 01 FF.. 00 || msg にパディングし、秘密指数で累乗する。
func privateTransform(k *Key, msg []byte) ([]byte, error) {
	size := k.Size()
	if len(msg) > size-paddingOverhead {
		return nil, fmt.Errorf("%w: message of %d bytes exceeds %d bytes for a %d-bit modulus",
			domain.ErrCrypto, len(msg), size-paddingOverhead, k.modulus.BitLen())
	}

	em := make([]byte, size)
	em[1] = 0x01
	psEnd := size - len(msg) - 1
	for i := 2; i < psEnd; i++ {
		em[i] = 0xff
	}
	copy(em[psEnd+1:], msg)

	m := new(big.Int).SetBytes(em)
	if m.Cmp(k.modulus) >= 0 {
		return nil, fmt.Errorf("%w: padded message out of range", domain.ErrCrypto)
	}
	c := new(big.Int).Exp(m, k.exponent, k.modulus)
	return c.FillBytes(make([]byte, size)), nil
}

// publicTransform は公開指数で累乗し、ブロックタイプ1のパディングを検証して外す。
func publicTransform(k *Key, data []byte) ([]byte, error) {
	size := k.Size()
	if len(data) > size {
		return nil, fmt.Errorf("%w: input of %d bytes is longer than modulus", domain.ErrCrypto, len(data))
	}

	c := new(big.Int).SetBytes(data)
	if c.Cmp(k.modulus) >= 0 {
		return nil, fmt.Errorf("%w: input out of range", domain.ErrCrypto)
	}
	em := new(big.Int).Exp(c, k.exponent, k.modulus).FillBytes(make([]byte, size))

	if em[0] != 0x00 || em[1] != 0x01 {
		return nil, fmt.Errorf("%w: invalid padding", domain.ErrCrypto)
	}
	i := 2
	for i < size && em[i] == 0xff {
		i++
	}
	if i == size || em[i] != 0x00 || i-2 < minPaddingLen {
		return nil, fmt.Errorf("%w: invalid padding", domain.ErrCrypto)
	}
	return em[i+1:], nil
}
