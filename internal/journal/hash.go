package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/models"
	"github.com/ucarion/jcs"
)

// GenesisPrevHash is the prev hash of every run's seq 0 record.
var GenesisPrevHash = strings.Repeat("0", 64)

// CalculateHash returns hex(SHA-256(prevHash || JCS(payload))).
// The payload is canonicalized with RFC 8785 so key order and number
// formatting cannot change the hash.
func CalculateHash(prevHash string, payload interface{}) (string, error) {
	if err := assert.Check(len(prevHash) == 64, "prev_hash must be 64 hex chars, got %d", len(prevHash)); err != nil {
		return "", err
	}
	if err := assert.Check(payload != nil, "payload must not be nil"); err != nil {
		return "", err
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	var normalized interface{}
	if err := json.Unmarshal(jsonBytes, &normalized); err != nil {
		return "", err
	}
	canonicalJSON, err := jcs.Format(normalized)
	if err != nil {
		return "", err
	}

	hasher := sha256.New()
	hasher.Write([]byte(prevHash))
	hasher.Write([]byte(canonicalJSON))
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// hashPayload is the hashed view of a record. PrevHash and Hash are excluded.
func hashPayload(rec *models.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":        rec.ID,
		"run_id":    rec.RunID,
		"seq":       rec.Seq,
		"timestamp": rec.Timestamp.UTC().Format(time.RFC3339Nano),
		"actor":     rec.Actor,
		"op":        rec.Op,
		"value":     rec.Value,
		"outcome":   rec.Outcome,
		"depth":     rec.Depth,
		"capacity":  rec.Capacity,
	}
}

// HashRecord computes the chain hash of rec from its PrevHash.
func HashRecord(rec *models.Record) (string, error) {
	if err := assert.NotNil(rec, "record"); err != nil {
		return "", err
	}
	return CalculateHash(rec.PrevHash, hashPayload(rec))
}
