package db

import (
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

func init() {
	meddler.Register("hash", hexMeddler[common.Hash]{parse: common.HexToHash})
	meddler.Register("address", hexMeddler[common.Address]{parse: common.HexToAddress})
}

// hexValue is a fixed size chain value stored as 0x-prefixed TEXT.
type hexValue interface {
	common.Hash | common.Address
	Hex() string
}

// hexMeddler converts block/tx ids and addresses, both as values and as nullable pointers.
// NULL reads back as the zero value or a nil pointer.
type hexMeddler[T hexValue] struct {
	parse func(string) T
}

func (m hexMeddler[T]) PreRead(any) (any, error) {
	return new(sql.NullString), nil
}

func (m hexMeddler[T]) PostRead(fieldAddr, scanTarget any) error {
	ns, ok := scanTarget.(*sql.NullString)
	if !ok {
		return fmt.Errorf("expected *sql.NullString, got %T", scanTarget)
	}

	switch ptr := fieldAddr.(type) {
	case *T:
		var zero T
		*ptr = zero
		if ns.Valid {
			*ptr = m.parse(ns.String)
		}
	case **T:
		*ptr = nil
		if ns.Valid {
			v := m.parse(ns.String)
			*ptr = &v
		}
	default:
		return fmt.Errorf("expected *%T or **%T, got %T", *new(T), *new(T), fieldAddr)
	}

	return nil
}

func (m hexMeddler[T]) PreWrite(field any) (any, error) {
	switch v := field.(type) {
	case T:
		return v.Hex(), nil
	case *T:
		if v == nil {
			return nil, nil
		}
		return (*v).Hex(), nil
	default:
		return nil, fmt.Errorf("expected %T or *%T, got %T", *new(T), *new(T), field)
	}
}
