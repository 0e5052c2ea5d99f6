// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/backsite", "pgx5://u:p@db:5432/backsite"},
		{"postgresql://u:p@db/backsite?sslmode=disable", "pgx5://u:p@db/backsite?sslmode=disable"},
		{"pgx5://u@db/backsite", "pgx5://u@db/backsite"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertToPgx5DSN(tt.in))
	}
}
