package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storereviews/reviews-service/internal/app/reviews/config"
)

func TestServe_ListenErrorIsReturned(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	server := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), server, time.Second) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start server")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after listen failure")
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, time.Second) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestConnectPool_CancelledContextReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.DatabaseConfig{
		Host:         "127.0.0.1",
		Port:         "1",
		User:         "reviews",
		Password:     "reviews",
		DBName:       "reviews",
		SSLMode:      "disable",
		MaxOpenConns: 2,
	}

	start := time.Now()
	pool, err := connectPool(ctx, cfg)

	assert.Nil(t, pool)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_ReturnsErrorInsteadOfExiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:         "127.0.0.1",
			Port:         "1",
			User:         "reviews",
			Password:     "reviews",
			DBName:       "reviews",
			SSLMode:      "disable",
			MaxOpenConns: 2,
		},
	}

	err := run(ctx, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}
