package grpc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/usecase/portfolio"
	"github.com/simaogato/assetflow-backend/internal/usecase/projection"
)

func field(req *structpb.Struct, name string) (*structpb.Value, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func stringField(req *structpb.Struct, name string) string {
	v, ok := field(req, name)
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(req, name))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

// decimalField accepts either a JSON number or a numeric string
func decimalField(req *structpb.Struct, name string) (*decimal.Decimal, error) {
	v, ok := field(req, name)
	if !ok {
		return nil, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		d, err := projection.FromFloat(kind.NumberValue, name)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", name, err)
		}
		return &d, nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
		}
		return &d, nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s: expected number or string", name)
	}
}

func requiredDecimal(req *structpb.Struct, name string) (decimal.Decimal, error) {
	d, err := decimalField(req, name)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return *d, nil
}

// intField accepts either a whole JSON number or a numeric string
func intField(req *structpb.Struct, name string) (*int, error) {
	v, ok := field(req, name)
	if !ok {
		return nil, nil
	}

	var n int
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s: must be a whole number", name)
		}
		n = int(f)
	case *structpb.Value_StringValue:
		parsed, err := strconv.Atoi(kind.StringValue)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
		}
		n = parsed
	default:
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s: expected number or string", name)
	}
	return &n, nil
}

// holdingInput reads the editable holding fields.
// A missing rate defaults to the kind's default rate.
func holdingInput(req *structpb.Struct) (portfolio.HoldingInput, error) {
	input := portfolio.HoldingInput{
		Kind: domain.HoldingKind(stringField(req, "kind")),
		Name: stringField(req, "name"),
	}

	amount, err := requiredDecimal(req, "amount")
	if err != nil {
		return input, err
	}
	input.Amount = amount

	rate, err := decimalField(req, "annual_rate_percent")
	if err != nil {
		return input, err
	}
	if rate != nil {
		input.AnnualRatePercent = *rate
	} else {
		input.AnnualRatePercent = input.Kind.DefaultRatePercent()
	}

	if _, ok := field(req, "memo"); ok {
		memo := stringField(req, "memo")
		input.Memo = &memo
	}

	return input, nil
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return s, nil
}
