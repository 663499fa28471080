package helper

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// NextSequence increments and returns the counter stored under key.
// Run it inside the transaction that consumes the number so gaps only appear on rollback.
func NextSequence(tx *gorm.DB, key string) (int64, error) {
	var next int64
	err := tx.Raw(`
		INSERT INTO doc_sequences (seq_key, seq_value) VALUES (?, 1)
		ON CONFLICT (seq_key) DO UPDATE SET seq_value = doc_sequences.seq_value + 1
		RETURNING seq_value`, key).Scan(&next).Error
	if err != nil {
		return 0, errors.Wrapf(err, "next sequence %s", key)
	}
	return next, nil
}

// FormatSequence renders "<prefix>/<scope>/<n padded>".
func FormatSequence(prefix, scope string, n int64, width int) string {
	return fmt.Sprintf("%s/%s/%0*d", prefix, scope, width, n)
}
