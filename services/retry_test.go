package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var fastRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 10 * time.Millisecond,
	MaxBackoff:     100 * time.Millisecond,
}

func TestWithRetry_Success(t *testing.T) {
	ctx := context.Background()

	callCount := 0
	err := WithRetry(ctx, fastRetryConfig, func() error {
		callCount++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_EventualSuccess(t *testing.T) {
	ctx := context.Background()

	callCount := 0
	err := WithRetry(ctx, fastRetryConfig, func() error {
		callCount++
		if callCount < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_AllFail(t *testing.T) {
	ctx := context.Background()

	callCount := 0
	err := WithRetry(ctx, fastRetryConfig, func() error {
		callCount++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if callCount != fastRetryConfig.MaxRetries+1 {
		t.Errorf("expected %d calls, got %d", fastRetryConfig.MaxRetries+1, callCount)
	}
	if !strings.Contains(err.Error(), "persistent error") {
		t.Errorf("error should wrap the last failure, got: %v", err)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	err := WithRetry(ctx, fastRetryConfig, func() error {
		callCount++
		cancel()
		return errors.New("fail then cancel")
	})

	if err == nil {
		t.Fatal("expected error when context is cancelled")
	}
	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation took effect, got %d", callCount)
	}
}
