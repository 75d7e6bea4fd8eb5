package oracle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"matchoracle/internal/models"
)

// ComputeResultHash digests every submitted field plus the submission time,
// length-prefixing each field so distinct submissions can never collide by
// concatenation. The hash is stored and emitted for tamper evidence and
// external indexing; it is never re-verified here.
func ComputeResultHash(matchID, gameContract, submitter string, participants []models.Participant, winnerIndex int16, durationSec int64, schemaID *string, customData []byte, submittedAt time.Time) string {
	h := sha256.New()
	writeField := func(b []byte) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(b)))
		h.Write(n[:])
		h.Write(b)
	}
	writeInt := func(v int64) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(v))
		h.Write(n[:])
	}

	writeField([]byte(matchID))
	writeField([]byte(gameContract))
	writeField([]byte(submitter))
	writeInt(int64(len(participants)))
	for _, p := range participants {
		writeField([]byte(p.Account))
		writeInt(p.Score)
	}
	writeInt(int64(winnerIndex))
	writeInt(durationSec)
	if schemaID != nil {
		writeField([]byte(*schemaID))
	} else {
		writeField(nil)
	}
	writeField(customData)
	writeInt(submittedAt.UTC().UnixNano())

	return "0x" + hex.EncodeToString(h.Sum(nil))
}
