package crypto

// StoredToken is the read-time view of a token column pair. Rows written
// before encryption was introduced carry the raw token with no IV; the
// variant is decided once when the row is loaded instead of threading
// nullable columns through the service layer.
type StoredToken struct {
	encrypted bool
	value     string // plaintext, or ciphertext when encrypted
	iv        string
}

func PlaintextToken(value string) StoredToken {
	return StoredToken{value: value}
}

func EncryptedToken(ciphertext, iv string) StoredToken {
	return StoredToken{encrypted: true, value: ciphertext, iv: iv}
}

// TokenFromColumns maps the nullable (value, iv) column pair to a variant:
// an IV present means the value column holds ciphertext.
func TokenFromColumns(value, iv *string) StoredToken {
	if value == nil {
		return StoredToken{}
	}
	if iv == nil || *iv == "" {
		return PlaintextToken(*value)
	}
	return EncryptedToken(*value, *iv)
}

func (t StoredToken) Empty() bool {
	return t.value == ""
}

func (t StoredToken) Encrypted() bool {
	return t.encrypted
}

// Reveal returns the usable token value, decrypting when needed. Returns
// ErrDecrypt when an encrypted token does not authenticate.
func (t StoredToken) Reveal(c *Cipher) (string, error) {
	if !t.encrypted {
		return t.value, nil
	}
	return c.Decrypt(t.value, t.iv)
}
