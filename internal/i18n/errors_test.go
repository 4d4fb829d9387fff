package i18n

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTranslateMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"Exact", "Invalid login credentials", "メールアドレスまたはパスワードが正しくありません"},
		{"Substring", "AuthApiError: Email not confirmed (400)", "メールアドレスが確認されていません"},
		{"Network", "TypeError: Failed to fetch", "ネットワークエラーが発生しました。インターネット接続を確認してください"},
		{"Unknown Passes Through", "duplicate key value", "duplicate key value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateMessage(tt.msg))
		})
	}
}

func TestTranslateError(t *testing.T) {
	amountErr := (&domain.Holding{
		Kind:   domain.HoldingKindCash,
		Name:   "Bank",
		Amount: decimal.NewFromInt(999_999_999_999 + 1),
	}).Validate()
	emptyName := (&domain.Holding{Kind: domain.HoldingKindCash, Name: " "}).Validate()
	badKind := (&domain.Holding{Kind: "bond", Name: "x"}).Validate()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, ""},
		{"Amount Ceiling", amountErr, "金額は999,999,999,999円以下で入力してください"},
		{"Empty Name", emptyName, "名前を入力してください"},
		{"Unknown Kind", badKind, "種類が正しくありません"},
		{"Years Out Of Range", domain.ValidateYears(101), "年数は0〜100年の範囲で入力してください"},
		{"Negative Rate", domain.ValidateRate(decimal.NewFromInt(-50)), "年利は0〜100%の範囲で入力してください"},
		{"Not Found Wrapped", fmt.Errorf("holding: %w", domain.ErrNotFound), "データが見つかりません"},
		{"Unauthenticated", domain.ErrUnauthenticated, "ログインが必要です"},
		{"Save In Progress", domain.ErrSaveInProgress, "保存中です。しばらくお待ちください"},
		{
			"Partial Save",
			&domain.PartialSaveError{Failed: map[uuid.UUID]error{uuid.New(): errors.New("x"), uuid.New(): errors.New("y")}},
			"2件の資産の更新に失敗しました。再度保存してください",
		},
		{"Computation", &domain.ComputationError{Reason: "NaN"}, "計算結果が不正なため処理を中止しました"},
		{
			"Fetch With Known Cause",
			&domain.FetchError{Op: "holdings", Err: errors.New("dial tcp: connection refused")},
			"ネットワークエラーが発生しました。インターネット接続を確認してください",
		},
		{
			"Persistence Passes Message Through",
			&domain.PersistenceError{Op: "holding", Err: errors.New("duplicate key")},
			"データの保存に失敗しました: failed to persist holding: duplicate key",
		},
		{"Plain Unknown", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateError(tt.err))
		})
	}
}
