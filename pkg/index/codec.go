package index

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

func encodeListing(l *Listing) ([]byte, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(raw, nil), nil
}

func decodeListing(data []byte) (*Listing, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot decompress listing: %w", err)
	}

	var res Listing
	err = json.Unmarshal(raw, &res)
	if err != nil {
		return nil, fmt.Errorf("cannot decode listing: %w", err)
	}
	return &res, nil
}
