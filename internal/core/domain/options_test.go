package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseSetOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want SetOptions
	}{
		{
			name: "no options",
			args: nil,
			want: SetOptions{},
		},
		{
			name: "nx",
			args: []string{"NX"},
			want: SetOptions{Existence: ExistenceNX},
		},
		{
			name: "xx lower case",
			args: []string{"xx"},
			want: SetOptions{Existence: ExistenceXX},
		},
		{
			name: "ex",
			args: []string{"EX", "5"},
			want: SetOptions{ExpiryUnit: ExpirySeconds, TTL: 5 * time.Second},
		},
		{
			name: "px mixed case",
			args: []string{"pX", "10"},
			want: SetOptions{ExpiryUnit: ExpiryMilliseconds, TTL: 10 * time.Millisecond},
		},
		{
			name: "zero ttl",
			args: []string{"PX", "0"},
			want: SetOptions{ExpiryUnit: ExpiryMilliseconds},
		},
		{
			name: "get",
			args: []string{"GET"},
			want: SetOptions{ReturnPrevious: true},
		},
		{
			name: "everything in any order",
			args: []string{"get", "PX", "1500", "xx"},
			want: SetOptions{
				Existence:      ExistenceXX,
				ExpiryUnit:     ExpiryMilliseconds,
				TTL:            1500 * time.Millisecond,
				ReturnPrevious: true,
			},
		},
		{
			name: "repeated flag",
			args: []string{"NX", "nx"},
			want: SetOptions{Existence: ExistenceNX},
		},
		{
			name: "repeated expiry of the same unit keeps the last",
			args: []string{"EX", "1", "EX", "2"},
			want: SetOptions{ExpiryUnit: ExpirySeconds, TTL: 2 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSetOptions(tt.args)
			if err != nil {
				t.Fatalf("ParseSetOptions(%q) error = %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("ParseSetOptions(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseSetOptions_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nx then xx", []string{"NX", "XX"}},
		{"xx then nx", []string{"xx", "nx"}},
		{"ex then px", []string{"EX", "5", "PX", "5"}},
		{"px then ex", []string{"PX", "5", "EX", "5"}},
		{"dangling ex", []string{"EX"}},
		{"dangling px after flag", []string{"NX", "PX"}},
		{"negative ttl", []string{"EX", "-1"}},
		{"non numeric ttl", []string{"PX", "soon"}},
		{"fractional ttl", []string{"EX", "1.5"}},
		{"ttl overflows duration", []string{"EX", "9223372036854775807"}},
		{"unknown token", []string{"KEEPTTL"}},
		{"unknown trailing token", []string{"NX", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSetOptions(tt.args)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("ParseSetOptions(%q) err = %v, want ErrSyntax", tt.args, err)
			}
			var de *DomainError
			if !errors.As(err, &de) {
				t.Fatal("error is not a DomainError")
			}
			want := strings.Join(tt.args, " ")
			if de.Details != want {
				t.Errorf("Details = %q, want %q", de.Details, want)
			}
		})
	}
}

func TestExistence_Allows(t *testing.T) {
	tests := []struct {
		e      Existence
		exists bool
		want   bool
	}{
		{ExistenceAny, false, true},
		{ExistenceAny, true, true},
		{ExistenceNX, false, true},
		{ExistenceNX, true, false},
		{ExistenceXX, false, false},
		{ExistenceXX, true, true},
	}
	for _, tt := range tests {
		if got := tt.e.Allows(tt.exists); got != tt.want {
			t.Errorf("%v.Allows(%v) = %v, want %v", tt.e, tt.exists, got, tt.want)
		}
	}
}
