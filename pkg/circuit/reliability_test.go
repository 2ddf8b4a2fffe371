// SPDX-FileCopyrightText: 2026 The opensim-networking Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package circuit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSeenInboundDuplicates(t *testing.T) {
	si := newSeenInbound(time.Minute, 16)
	now := time.Now()

	for seq := uint32(1); seq <= 4; seq++ {
		if si.observe(seq, now) {
			t.Fatalf("%d is no duplicate", seq)
		}
	}
	for seq := uint32(1); seq <= 4; seq++ {
		if !si.observe(seq, now) {
			t.Fatalf("%d is a duplicate", seq)
		}
	}

	if l := si.len(); l != 4 {
		t.Fatalf("remembers %d instead of 4 entries", l)
	}
}

func TestSeenInboundHorizon(t *testing.T) {
	si := newSeenInbound(time.Second, 16)
	now := time.Now()

	si.observe(1, now)
	si.observe(2, now.Add(500*time.Millisecond))

	if !si.observe(1, now.Add(time.Second)) {
		t.Fatal("1 was forgotten too early")
	}
	if si.observe(1, now.Add(1200*time.Millisecond)) {
		t.Fatal("1 was not forgotten after the horizon")
	}
	if !si.observe(2, now.Add(1200*time.Millisecond)) {
		t.Fatal("2 was forgotten too early")
	}
}

func TestSeenInboundCapacity(t *testing.T) {
	si := newSeenInbound(time.Minute, 3)
	now := time.Now()

	for seq := uint32(1); seq <= 5; seq++ {
		si.observe(seq, now)
	}

	if l := si.len(); l != 3 {
		t.Fatalf("remembers %d instead of 3 entries", l)
	}

	// The oldest entries were evicted.
	if si.observe(5, now) != true || si.observe(4, now) != true || si.observe(3, now) != true {
		t.Fatal("newest entries were evicted")
	}
	if si.observe(1, now) {
		t.Fatal("oldest entry survived")
	}
}

func TestSendResult(t *testing.T) {
	sr := newSendResult()

	if err := sr.Err(); err != nil {
		t.Fatalf("unresolved result has error %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := sr.WaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unexpected error %v", err)
	}

	first := errors.New("first")
	go sr.resolve(first)

	if err := sr.Wait(); err != first {
		t.Fatalf("unexpected error %v", err)
	}

	// Only the first resolution counts.
	sr.resolve(nil)
	if err := sr.Err(); err != first {
		t.Fatalf("result was resolved twice: %v", err)
	}
}
