package credstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/MrEthical07/goAuthClient/session"
)

const (
	userFormatVersionCurrent = 2
	userFormatVersionV1      = 1
)

// EncodeUser serialises u into the compact cached-user format:
//
//	version | len id | id | len email | email | len role | role | len name | name | cachedAt (int64 BE)
//
// Version 1 records stop after role.
func EncodeUser(u session.User, cachedAt int64) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(userFormatVersionCurrent)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"id", u.ID},
		{"email", u.Email},
		{"role", string(u.Role)},
		{"name", u.DisplayName},
	} {
		if len(field.value) > 255 {
			return nil, errors.New(field.name + " too long")
		}
		buf.WriteByte(byte(len(field.value)))
		buf.WriteString(field.value)
	}

	if err := binary.Write(&buf, binary.BigEndian, cachedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeUser parses data produced by [EncodeUser] (any supported version) and returns the
// user and the time it was cached (0 for version 1 records).
func DecodeUser(data []byte) (session.User, int64, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return session.User{}, 0, err
	}
	if version != userFormatVersionCurrent && version != userFormatVersionV1 {
		return session.User{}, 0, errors.New("invalid cached user version")
	}

	var u session.User
	if u.ID, err = readShortString(reader); err != nil {
		return session.User{}, 0, err
	}
	if u.Email, err = readShortString(reader); err != nil {
		return session.User{}, 0, err
	}
	role, err := readShortString(reader)
	if err != nil {
		return session.User{}, 0, err
	}
	u.Role = session.Role(role)

	var cachedAt int64
	if version == userFormatVersionCurrent {
		if u.DisplayName, err = readShortString(reader); err != nil {
			return session.User{}, 0, err
		}
		if err := binary.Read(reader, binary.BigEndian, &cachedAt); err != nil {
			return session.User{}, 0, err
		}
	}

	if reader.Len() != 0 {
		return session.User{}, 0, errors.New("trailing bytes in cached user")
	}
	if err := checkUser(u); err != nil {
		return session.User{}, 0, err
	}

	return u, cachedAt, nil
}

func readShortString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
