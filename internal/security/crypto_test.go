// internal/security/crypto_test.go
package security

import (
	"crypto/aes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec := NewCodec(DefaultKey)

	payload := map[string]any{
		"user_id":      "u_1001",
		"phone_number": "13800000000",
	}

	encrypted, err := codec.Encrypt(payload)
	require.NoError(t, err)
	assert.NotEmpty(t, encrypted)

	var decoded map[string]any
	require.NoError(t, codec.DecryptInto(encrypted, &decoded))
	assert.Equal(t, "u_1001", decoded["user_id"])
	assert.Equal(t, "13800000000", decoded["phone_number"])
}

func TestDecryptRejectsInvalidBase64(t *testing.T) {
	codec := NewCodec(DefaultKey)

	_, err := codec.Decrypt("不是base64%%%")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	codec := NewCodec(DefaultKey)

	// 不足一个IV块
	short := base64.StdEncoding.EncodeToString([]byte("short"))
	_, err := codec.Decrypt(short)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	codec := NewCodec(DefaultKey)
	other := NewCodec("another_key_entirely")

	encrypted, err := codec.Encrypt(map[string]string{"k": "v"})
	require.NoError(t, err)

	// 错误密钥解出的明文填充几乎必然非法
	_, err = other.Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestCiphertextIsBlockAligned(t *testing.T) {
	codec := NewCodec(DefaultKey)

	encrypted, err := codec.Encrypt("短文本")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	assert.Zero(t, len(raw)%aes.BlockSize)
	assert.GreaterOrEqual(t, len(raw), 2*aes.BlockSize)
}

func TestPKCS7Unpad(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
		want    []byte
	}{
		{"整块填充", append([]byte("0123456789abcdef"), []byte{16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16}...), false, []byte("0123456789abcdef")},
		{"常规填充", []byte{'a', 'b', 'c', 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13, 13}, false, []byte("abc")},
		{"填充为零", []byte{'a', 0}, true, nil},
		{"填充过长", []byte{'a', 17}, true, nil},
		{"填充内容不一致", []byte{'a', 2, 3}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pkcs7Unpad(tt.data, aes.BlockSize)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
