package database

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// Hash returns the digest of the previous block hash, the nonce and the
// block data. The data is serialized the same way on every node so peers
// can compare hashes. Data that can't be serialized, such as a NaN or an
// infinite amount, hashes to the empty string which never solves the puzzle.
func Hash(prevHash string, data BlockData, nonce uint64) string {
	payload, err := encode(data)
	if err != nil {
		return ""
	}

	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write([]byte(strconv.FormatUint(nonce, 10)))
	h.Write(payload)

	return hex.EncodeToString(h.Sum(nil))
}

// encode produces the canonical JSON for the block data. HTML escaping is
// turned off and the trailing newline written by the encoder is removed.
// Negative zero amounts are written as 0 and U+2028 and U+2029 are written
// raw, matching JSON.stringify.
func encode(data BlockData) ([]byte, error) {
	txs := make([]Tx, len(data.Transactions))
	for i, tx := range data.Transactions {
		if tx.Amount == 0 {
			tx.Amount = 0
		}
		txs[i] = tx
	}
	data.Transactions = txs

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}

	return unescapeSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeSeparators replaces the \u2028 and \u2029 escapes the encoder
// always writes with the raw characters. Every backslash in encoder output
// starts an escape sequence, so escaped backslashes are copied as pairs.
func unescapeSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}

		if i+5 < len(b) && b[i+1] == 'u' && string(b[i+2:i+5]) == "202" && (b[i+5] == '8' || b[i+5] == '9') {
			out = append(out, string(rune(0x2020+rune(b[i+5]-'0')))...)
			i += 5
			continue
		}

		out = append(out, b[i], b[i+1])
		i++
	}

	return out
}
