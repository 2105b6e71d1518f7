package nfe

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
)

// Fingerprint devolve o SHA-256 hex do XML canonicalizado (C14N).
// Reenvios do mesmo documento com formatação diferente (espaços, ordem de
// atributos, declaração XML) produzem o mesmo fingerprint.
func Fingerprint(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	dec.CharsetReader = charsetReader
	canonico, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("nfe: canonicalizar XML: %w", err)
	}
	soma := sha256.Sum256(canonico)
	return hex.EncodeToString(soma[:]), nil
}
