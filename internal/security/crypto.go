// internal/security/crypto.go
package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// 与后端SecurityUtils保持一致的产品密钥
const DefaultKey = "soluna_encryption_key_32bytes!"

// ErrDecrypt 解密或去填充失败
var ErrDecrypt = errors.New("解密数据失败")

// Codec 提供与后端兼容的AES-256-CBC加解密
// 密文格式：base64( IV(16字节) || CBC密文 )，明文为JSON
type Codec struct {
	key []byte
}

// NewCodec 创建编解码器，密钥补齐或截断为32字节
func NewCodec(key string) *Codec {
	keyBytes := make([]byte, 32)
	copy(keyBytes, []byte(key))
	return &Codec{key: keyBytes}
}

// Encrypt 将数据序列化为JSON后加密，返回base64字符串
func (c *Codec) Encrypt(data any) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("序列化加密数据失败: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt 解密base64密文，返回明文JSON字节
func (c *Codec) Decrypt(encrypted string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: base64解码失败: %v", ErrDecrypt, err)
	}

	if len(raw) < aes.BlockSize || len(raw)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: 密文长度不合法", ErrDecrypt)
	}

	iv, body := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: 密文为空", ErrDecrypt)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, body)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return unpadded, nil
}

// DecryptInto 解密并反序列化到目标结构
func (c *Codec) DecryptInto(encrypted string, target any) error {
	plaintext, err := c.Decrypt(encrypted)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("%w: 解析明文JSON失败: %v", ErrDecrypt, err)
	}
	return nil
}

// pkcs7Pad 对数据做PKCS#7填充
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

// pkcs7Unpad 去除PKCS#7填充
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("数据为空")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.New("填充长度不合法")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("填充内容不合法")
		}
	}
	return data[:len(data)-padding], nil
}
