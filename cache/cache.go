package cache

import (
	"strconv"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// Store adalah key-value cache di depan relational store. Cache hanya
// optimasi: semua caller wajib menelan error cache dan lanjut ke DB.
type Store interface {
	// Get mengembalikan (value, found, error). Key kadaluarsa = not found.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	SetEx(key, value string, ttl time.Duration) error
	Delete(key string) error
}

// RedisStore adalah implementasi Store di atas pool radix.
type RedisStore struct {
	client radix.Client
}

// NewRedisStore membuat pool koneksi ke Redis.
func NewRedisStore(addr string) (*RedisStore, error) {
	pool, err := radix.NewPool("tcp", addr, 10)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: pool}, nil
}

func (r *RedisStore) Get(key string) (string, bool, error) {
	mb := radix.MaybeNil{Rcv: new(string)}
	if err := r.client.Do(radix.Cmd(&mb, "GET", key)); err != nil {
		return "", false, err
	}
	if mb.Nil {
		return "", false, nil
	}
	return *(mb.Rcv.(*string)), true, nil
}

func (r *RedisStore) Set(key, value string) error {
	return r.client.Do(radix.Cmd(nil, "SET", key, value))
}

func (r *RedisStore) SetEx(key, value string, ttl time.Duration) error {
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return r.client.Do(radix.Cmd(nil, "SETEX", key, strconv.Itoa(seconds), value))
}

func (r *RedisStore) Delete(key string) error {
	return r.client.Do(radix.Cmd(nil, "DEL", key))
}

// Close menutup pool koneksi.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
