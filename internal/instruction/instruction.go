// Package instruction encodes and decodes lottery program instructions.
//
// Wire format: a 1-byte tag followed by the instruction's u64 fields, each as
// 8 little-endian bytes in declaration order. There is no terminator and no
// length prefix.
//
//	tag  instruction  payload
//	1    Initialize   fund u64, price u64
//	2    SignIn       -
//	3    AdjustFund   fund u64, price u64
//	4    Roll         -
//	5    Reward       -
package instruction

import (
	"encoding/binary"
	"fmt"

	"github.com/solongwallet/lottery/internal/progerr"
)

// Tag is the leading byte of an instruction buffer.
type Tag uint8

const (
	TagInitialize Tag = 1
	TagSignIn     Tag = 2
	TagAdjustFund Tag = 3
	TagRoll       Tag = 4
	TagReward     Tag = 5
)

// String returns the instruction name for the tag.
func (t Tag) String() string {
	switch t {
	case TagInitialize:
		return "Initialize"
	case TagSignIn:
		return "SignIn"
	case TagAdjustFund:
		return "AdjustFund"
	case TagRoll:
		return "Roll"
	case TagReward:
		return "Reward"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Instruction is one decoded program instruction. The set of implementations
// is closed: Initialize, SignIn, AdjustFund, Roll and Reward.
type Instruction interface {
	Tag() Tag
	appendFields(dst []byte) []byte
}

// Initialize resets the pool and billboard and sets the draw configuration.
type Initialize struct {
	Fund  uint64
	Price uint64
}

// SignIn enters the signing account into the current round.
type SignIn struct{}

// AdjustFund overwrites fund and price between rounds.
type AdjustFund struct {
	Fund  uint64
	Price uint64
}

// Roll draws a winner from the current round.
type Roll struct{}

// Reward pays out unrewarded billboard entries.
type Reward struct{}

func (Initialize) Tag() Tag { return TagInitialize }
func (SignIn) Tag() Tag     { return TagSignIn }
func (AdjustFund) Tag() Tag { return TagAdjustFund }
func (Roll) Tag() Tag       { return TagRoll }
func (Reward) Tag() Tag     { return TagReward }

func (i Initialize) appendFields(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, i.Fund)
	return binary.LittleEndian.AppendUint64(dst, i.Price)
}

func (i AdjustFund) appendFields(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, i.Fund)
	return binary.LittleEndian.AppendUint64(dst, i.Price)
}

func (SignIn) appendFields(dst []byte) []byte { return dst }
func (Roll) appendFields(dst []byte) []byte   { return dst }
func (Reward) appendFields(dst []byte) []byte { return dst }

// Encode serializes an instruction. The result is exactly 1 + 8*fields bytes.
func Encode(ix Instruction) []byte {
	buf := make([]byte, 0, 1+8*2)
	buf = append(buf, byte(ix.Tag()))
	return ix.appendFields(buf)
}

// Decode parses an instruction buffer. Empty input, an unknown tag, or a
// truncated u64 field fail with progerr.CodeInvalidInstruction. Bytes past
// the last field are ignored.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, progerr.New(progerr.CodeInvalidInstruction, "empty instruction")
	}
	tag, rest := Tag(data[0]), data[1:]

	switch tag {
	case TagInitialize:
		fund, price, err := unpackFundPrice(rest)
		if err != nil {
			return nil, err
		}
		return Initialize{Fund: fund, Price: price}, nil
	case TagSignIn:
		return SignIn{}, nil
	case TagAdjustFund:
		fund, price, err := unpackFundPrice(rest)
		if err != nil {
			return nil, err
		}
		return AdjustFund{Fund: fund, Price: price}, nil
	case TagRoll:
		return Roll{}, nil
	case TagReward:
		return Reward{}, nil
	default:
		return nil, progerr.New(progerr.CodeInvalidInstruction, "unknown tag %d", uint8(tag))
	}
}

func unpackFundPrice(rest []byte) (fund, price uint64, err error) {
	fund, rest, err = unpackU64(rest, "fund")
	if err != nil {
		return 0, 0, err
	}
	price, _, err = unpackU64(rest, "price")
	if err != nil {
		return 0, 0, err
	}
	return fund, price, nil
}

func unpackU64(input []byte, field string) (uint64, []byte, error) {
	if len(input) < 8 {
		return 0, nil, progerr.New(progerr.CodeInvalidInstruction,
			"%s needs 8 bytes, %d remain", field, len(input))
	}
	return binary.LittleEndian.Uint64(input[:8]), input[8:], nil
}
