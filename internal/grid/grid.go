// Package grid implements the deterministic entropy-to-grid mapper (§4.4):
// filling a reel grid from combined entropy under layout constraints, plus
// the alternative reel-position mode and the theta-mixing verifier formula.
package grid

import (
	"encoding/binary"
	"fmt"
	"math"

	domaingrid "github.com/slotmachine/fairness-engine/domain/grid"
	"github.com/slotmachine/fairness-engine/internal/apperrors"
	"github.com/slotmachine/fairness-engine/internal/kdf"
)

// U32 derives the sub-random unsigned 32-bit integer for grid position
// counter p: the first 4 bytes of HMAC-SHA256(combinedEntropy, "position:p")
// read big-endian.
func U32(combinedEntropy []byte, p int) uint32 {
	sum := kdf.HMACSHA256(combinedEntropy, []byte(fmt.Sprintf("position:%d", p)))
	return binary.BigEndian.Uint32(sum[:4])
}

// F derives the sub-random float in [0,1] for grid position counter p: the
// first 4 bytes of HMAC-SHA256(combinedEntropy, "float:p") read big-endian
// and divided by 0xFFFFFFFF.
func F(combinedEntropy []byte, p int) float64 {
	sum := kdf.HMACSHA256(combinedEntropy, []byte(fmt.Sprintf("float:%d", p)))
	v := binary.BigEndian.Uint32(sum[:4])
	return float64(v) / float64(0xFFFFFFFF)
}

// Fill deterministically computes grid[reelCount][rows] from combined
// entropy, honoring the wild/bonus/gold spawn rules in column-major,
// row-minor order with a single monotonic position counter.
func Fill(combinedEntropy []byte, cfg domaingrid.Config, rates domaingrid.SpawnRates) (domaingrid.Grid, error) {
	if cfg.ReelCount < 3 || cfg.ReelCount > 8 {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("reelCount must be in [3,8], got %d", cfg.ReelCount))
	}
	if cfg.VisibleRows < 0 || cfg.BufferRows < 0 {
		return nil, apperrors.NewInvalidInput("visibleRows and bufferRows must be non-negative")
	}

	basePool := basePoolOf(cfg.Symbols)
	if len(basePool) == 0 {
		return nil, apperrors.NewInvalidInput("symbol pool must contain at least one symbol other than wild/bonus")
	}

	windowStart, windowEnd := cfg.VisibleWindow()
	goldAllowed := toSet(cfg.GoldAllowedColumns)
	rows := cfg.Rows()

	result := make(domaingrid.Grid, cfg.ReelCount)
	p := 0
	for column := 0; column < cfg.ReelCount; column++ {
		result[column] = make([]string, rows)
		bonusPlaced := false
		for row := 0; row < rows; row++ {
			inWindow := row >= windowStart && row < windowEnd
			result[column][row] = cellSymbol(combinedEntropy, p, column, inWindow, &bonusPlaced, basePool, goldAllowed, rates)
			p++
		}
	}
	return result, nil
}

func cellSymbol(
	combinedEntropy []byte,
	p int,
	column int,
	inVisibleWindow bool,
	bonusPlacedInColumn *bool,
	basePool []string,
	goldAllowed map[int]bool,
	rates domaingrid.SpawnRates,
) string {
	if F(combinedEntropy, 4*p) < rates.WildChance {
		return "wild"
	}

	if inVisibleWindow && !*bonusPlacedInColumn && F(combinedEntropy, 4*p+1) < rates.BonusChance {
		*bonusPlacedInColumn = true
		return "bonus"
	}

	idx := U32(combinedEntropy, 4*p+2) % uint32(len(basePool))
	symbol := basePool[idx]

	if F(combinedEntropy, 4*p+3) < rates.GoldChance && goldAllowed[column] {
		symbol += "_gold"
	}
	return symbol
}

func basePoolOf(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "wild" || s == "bonus" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func toSet(values []int) map[int]bool {
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// ReelPositions implements the alternative reel-position mode (§4.4): one
// integer position per reel in [0, symbolsPerReel), derived independently
// of the grid-fill algorithm from the same combined entropy.
func ReelPositions(combinedEntropy, clientSeed []byte, nonce int64, reelCount, symbolsPerReel int) ([]int, error) {
	if symbolsPerReel <= 0 {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("symbolsPerReel must be positive, got %d", symbolsPerReel))
	}
	if reelCount < 3 || reelCount > 8 {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("reelCount must be in [3,8], got %d", reelCount))
	}

	positions := make([]int, reelCount)
	for r := 0; r < reelCount; r++ {
		msg := []byte(fmt.Sprintf("%s:%d:%d", clientSeed, nonce, r))
		sum := kdf.HMACSHA256(combinedEntropy, msg)
		v := binary.BigEndian.Uint32(sum[:4])
		positions[r] = int(v % uint32(symbolsPerReel))
	}
	return positions, nil
}

// ThetaMixPositions implements the auxiliary, grid-algorithm-free reel
// position formula of §4.4: position[r] = floor((theta[r mod 3]/(2π) +
// byte_r/255) · numSymbols) mod numSymbols, where byte_r is the r-th byte
// of combinedEntropy (wrapping if reelCount exceeds its length). It exists
// so a verifier can reproduce position arithmetic without replaying Fill.
func ThetaMixPositions(theta [3]float64, combinedEntropy []byte, reelCount, numSymbols int) ([]int, error) {
	if numSymbols <= 0 {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("numSymbols must be positive, got %d", numSymbols))
	}
	if len(combinedEntropy) == 0 {
		return nil, apperrors.NewInvalidInput("combinedEntropy must not be empty")
	}

	positions := make([]int, reelCount)
	for r := 0; r < reelCount; r++ {
		thetaComponent := theta[r%3] / (2 * math.Pi)
		byteR := float64(combinedEntropy[r%len(combinedEntropy)]) / 255.0
		raw := int(math.Floor((thetaComponent + byteR) * float64(numSymbols)))
		positions[r] = ((raw % numSymbols) + numSymbols) % numSymbols
	}
	return positions, nil
}
