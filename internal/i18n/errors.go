package i18n

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/format"
)

type translation struct {
	english  string
	japanese string
}

// Matched by substring, first hit wins
var backendTranslations = []translation{
	{"Invalid login credentials", "メールアドレスまたはパスワードが正しくありません"},
	{"Email not confirmed", "メールアドレスが確認されていません"},
	{"Too many requests", "リクエストが多すぎます。しばらく時間をおいてから再度お試しください"},
	{"User not found", "ユーザーが見つかりません"},
	{"Invalid email", "無効なメールアドレスです"},
	{"Password should be at least 6 characters", "パスワードは6文字以上で入力してください"},
	{"Unable to validate email address: invalid format", "メールアドレスの形式が正しくありません"},
	{"Signup requires a valid password", "有効なパスワードが必要です"},
	{"User already registered", "このメールアドレスは既に登録されています"},
	{"Failed to fetch", "ネットワークエラーが発生しました。インターネット接続を確認してください"},
	{"connection refused", "ネットワークエラーが発生しました。インターネット接続を確認してください"},
	{"Network request failed", "ネットワークエラーが発生しました"},
	{"Something went wrong", "予期しないエラーが発生しました"},
	{"An unexpected error occurred", "予期しないエラーが発生しました"},
}

var fieldNames = map[string]string{
	"kind":                "種類",
	"name":                "名前",
	"amount":              "金額",
	"annual_rate_percent": "年利",
	"memo":                "メモ",
	"years":               "年数",
}

// TranslateMessage returns the Japanese message for a known backend message, or msg unchanged
func TranslateMessage(msg string) string {
	for _, t := range backendTranslations {
		if strings.Contains(msg, t.english) {
			return t.japanese
		}
	}
	return msg
}

// TranslateError renders err as a user-facing Japanese message.
// Unknown errors fall back to TranslateMessage on their text.
func TranslateError(err error) string {
	if err == nil {
		return ""
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return translateValidation(ve)
	}

	var pse *domain.PartialSaveError
	if errors.As(err, &pse) {
		return fmt.Sprintf("%d件の資産の更新に失敗しました。再度保存してください", len(pse.Failed))
	}

	var ce *domain.ComputationError
	if errors.As(err, &ce) {
		return "計算結果が不正なため処理を中止しました"
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "ログインが必要です"
	case errors.Is(err, domain.ErrNotFound):
		return "データが見つかりません"
	case errors.Is(err, domain.ErrNoSession):
		return "棚卸しが開始されていません"
	case errors.Is(err, domain.ErrSaveInProgress):
		return "保存中です。しばらくお待ちください"
	case errors.Is(err, domain.ErrUnsavedChanges):
		return "保存されていない変更があります。破棄してよろしいですか"
	case errors.Is(err, domain.ErrSessionActive):
		return "棚卸しは既に開始されています"
	}

	msg := err.Error()
	if translated := TranslateMessage(msg); translated != msg {
		return translated
	}

	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return "データの取得に失敗しました: " + msg
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return "データの保存に失敗しました: " + msg
	}

	return msg
}

func translateValidation(ve *domain.ValidationError) string {
	field, ok := fieldNames[ve.Field]
	if !ok {
		return ve.Error()
	}

	switch ve.Field {
	case "name":
		if strings.Contains(ve.Message, "empty") {
			return "名前を入力してください"
		}
		return fmt.Sprintf("名前は%d文字以内で入力してください", domain.MaxNameLength)
	case "amount":
		if strings.Contains(ve.Message, "positive") {
			return "金額は0より大きい値を入力してください"
		}
		return fmt.Sprintf("金額は%s円以下で入力してください", format.FormatDecimal(domain.MaxAmount))
	case "annual_rate_percent":
		return "年利は0〜100%の範囲で入力してください"
	case "memo":
		return fmt.Sprintf("メモは%d文字以内で入力してください", domain.MaxMemoLength)
	case "years":
		return fmt.Sprintf("年数は0〜%d年の範囲で入力してください", domain.MaxYears)
	}
	return field + "が正しくありません"
}
