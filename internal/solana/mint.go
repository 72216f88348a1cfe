package solana

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-token-risk/internal/domain"
)

// mintAccountLen is the byte length of an SPL mint account.
// Token-2022 mints carry extensions past this prefix; the base layout is
// identical, so parsing reads only the first mintAccountLen bytes.
const mintAccountLen = 82

// SPL mint account layout offsets.
const (
	mintAuthorityOptionOff   = 0
	mintAuthorityOff         = 4
	supplyOff                = 36
	decimalsOff              = 44
	freezeAuthorityOptionOff = 46
	freezeAuthorityOff       = 50
)

// parseMintAccount decodes the binary SPL mint layout.
func parseMintAccount(data []byte) (*domain.MintInfo, error) {
	if len(data) < mintAccountLen {
		return nil, fmt.Errorf("mint account too short: %d bytes", len(data))
	}

	info := &domain.MintInfo{
		Supply:   binary.LittleEndian.Uint64(data[supplyOff : supplyOff+8]),
		Decimals: data[decimalsOff],
	}

	if binary.LittleEndian.Uint32(data[mintAuthorityOptionOff:mintAuthorityOptionOff+4]) == 1 {
		addr := base58.Encode(data[mintAuthorityOff : mintAuthorityOff+32])
		info.MintAuthority = &addr
	}
	if binary.LittleEndian.Uint32(data[freezeAuthorityOptionOff:freezeAuthorityOptionOff+4]) == 1 {
		addr := base58.Encode(data[freezeAuthorityOff : freezeAuthorityOff+32])
		info.FreezeAuthority = &addr
	}

	return info, nil
}
