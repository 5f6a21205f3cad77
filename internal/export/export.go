// Package export writes the pipeline's unified claim output, a JSON array of
// claim records consumed by downstream AIDA tooling.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/claimflow/internal/model"
)

// WriteClaims serializes claims to path as an indented JSON array. An empty
// claim set writes an empty array, not null.
func WriteClaims(claims []*model.Claim, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create claims output: %w", err)
	}
	defer file.Close()

	if err := EncodeClaims(claims, file); err != nil {
		return fmt.Errorf("write claims output %s: %w", path, err)
	}
	return nil
}

// EncodeClaims writes the claim array to w.
func EncodeClaims(claims []*model.Claim, w io.Writer) error {
	if claims == nil {
		claims = []*model.Claim{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(claims)
}

// ReadClaims loads a claim array written by WriteClaims.
func ReadClaims(path string) ([]*model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	var claims []*model.Claim
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal claims %s: %w", path, err)
	}
	return claims, nil
}
