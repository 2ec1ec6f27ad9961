package bookings

import (
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"
)

const referencePrefix = "TB-"

// ReferenceCoder turns booking ids into short public codes for check-in.
type ReferenceCoder struct {
	h *hashids.HashID
}

func NewReferenceCoder(salt string) (*ReferenceCoder, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 6
	hd.Alphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}
	return &ReferenceCoder{h: h}, nil
}

func (c *ReferenceCoder) Encode(id int64) (string, error) {
	s, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("encode booking reference: %w", err)
	}
	return referencePrefix + s, nil
}

func (c *ReferenceCoder) Decode(ref string) (int64, error) {
	code, ok := strings.CutPrefix(ref, referencePrefix)
	if !ok || code == "" {
		return 0, ErrInvalidReference
	}
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, ErrInvalidReference
	}
	return ids[0], nil
}

// Stamp sets b.Reference.
func (c *ReferenceCoder) Stamp(b *Booking) error {
	ref, err := c.Encode(b.ID)
	if err != nil {
		return err
	}
	b.Reference = ref
	return nil
}
