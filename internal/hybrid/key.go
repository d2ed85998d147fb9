package hybrid

import "math/big"

// Role は鍵の役割（どちらの変換方向に使えるか）を表す。
type Role int

const (
	// RolePrivate は秘密指数を持つ鍵。ラップにのみ使う。
	RolePrivate Role = iota + 1
	// RolePublic は公開指数を持つ鍵。アンラップにのみ使う。
	RolePublic
)

func (r Role) String() string {
	switch r {
	case RolePrivate:
		return "private"
	case RolePublic:
		return "public"
	default:
		return "unknown"
	}
}

// Key はRSAの法と指数の組。生成後は変更できない。
type Key struct {
	modulus  *big.Int
	exponent *big.Int
	role     Role
}

// NewKey は法と指数をコピーしてKeyを生成する。
// 組がRSA鍵として整合しているかは検証しない。
func NewKey(modulus, exponent *big.Int, role Role) *Key {
	return &Key{
		modulus:  new(big.Int).Set(modulus),
		exponent: new(big.Int).Set(exponent),
		role:     role,
	}
}

// Modulus は法のコピーを返す。
func (k *Key) Modulus() *big.Int {
	return new(big.Int).Set(k.modulus)
}

// Exponent は指数のコピーを返す。
func (k *Key) Exponent() *big.Int {
	return new(big.Int).Set(k.exponent)
}

// Role は鍵の役割を返す。
func (k *Key) Role() Role {
	return k.role
}

// Size は法のバイト長を返す。
func (k *Key) Size() int {
	return (k.modulus.BitLen() + 7) / 8
}
