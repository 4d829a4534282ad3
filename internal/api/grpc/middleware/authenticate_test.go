package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apicontext "github.com/dtroode/dailyphrase/internal/api/context"
	"github.com/dtroode/dailyphrase/internal/mocks"
	"github.com/dtroode/dailyphrase/internal/model"
	"github.com/dtroode/dailyphrase/internal/testutil"
)

func TestAuthenticate_AuthFunc(t *testing.T) {
	operator := model.Operator{Subject: "ops", Role: model.RoleAdmin}

	tests := []struct {
		name     string
		header   string
		parseErr error
		wantCode codes.Code
	}{
		{name: "missing header", wantCode: codes.Unauthenticated},
		{name: "invalid token", header: "Bearer bad", parseErr: errors.New("signature is invalid"), wantCode: codes.Unauthenticated},
		{name: "valid token", header: "Bearer good", wantCode: codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mocks.NewOperatorTokenManager(t)
			if tt.header != "" {
				tokens.On("ParseOperatorToken", mock.Anything).Return(operator, tt.parseErr).Once()
			}
			ctxManager := apicontext.NewManager()
			a := NewAuthenticate(tokens, ctxManager, testutil.MakeNoopLogger())

			ctx := context.Background()
			if tt.header != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.header))
			}

			got, err := a.AuthFunc(ctx)
			if tt.wantCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			op, ok := ctxManager.GetOperatorFromContext(got)
			require.True(t, ok)
			assert.Equal(t, operator, op)
		})
	}
}

func TestAuthenticate_StripsBearerPrefix(t *testing.T) {
	tokens := mocks.NewOperatorTokenManager(t)
	tokens.On("ParseOperatorToken", "abc.def.ghi").Return(model.Operator{Subject: "ops", Role: model.RoleAdmin}, nil).Once()
	a := NewAuthenticate(tokens, apicontext.NewManager(), testutil.MakeNoopLogger())

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	_, err := a.AuthFunc(ctx)
	require.NoError(t, err)
}
