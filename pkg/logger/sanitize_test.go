package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSanitizeFields_MasksSensitiveKeys(t *testing.T) {
	fields := SanitizeFields([]zap.Field{
		zap.String("password", "hunter2"),
		zap.String("access_token", "abc"),
		zap.String("email", "prof@faculty.test"),
	})

	values := encodeAll(fields)
	if values["password"] != "***" {
		t.Fatalf("password leaked: %v", values["password"])
	}
	if values["access_token"] != "***" {
		t.Fatalf("token leaked: %v", values["access_token"])
	}
	if values["email"] != "prof@faculty.test" {
		t.Fatalf("benign field altered: %v", values["email"])
	}
}

func TestSanitizeFields_RecursesIntoBodies(t *testing.T) {
	fields := SanitizeFields([]zap.Field{
		zap.Any("body", map[string]interface{}{
			"titre":    "Exam Schedule",
			"password": "hunter2",
			"nested": map[string]interface{}{
				"secret": "s3cr3t",
			},
		}),
	})

	values := encodeAll(fields)
	body, ok := values["body"].(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected body type %T", values["body"])
	}
	if body["password"] != "***" {
		t.Fatalf("nested password leaked: %v", body["password"])
	}
	if body["titre"] != "Exam Schedule" {
		t.Fatalf("benign nested field altered: %v", body["titre"])
	}
	nested, ok := body["nested"].(map[string]interface{})
	if !ok || nested["secret"] != "***" {
		t.Fatalf("deeply nested secret leaked: %v", body["nested"])
	}
}

func encodeAll(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}
	return enc.Fields
}
