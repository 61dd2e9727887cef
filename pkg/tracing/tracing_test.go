package tracing

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func initTestTracer(t *testing.T) {
	t.Helper()
	shutdown, err := InitTracer("bookmarket-test", "localhost:4317")
	if err != nil {
		t.Fatalf("初始化Tracer失败: %v", err)
	}
	t.Cleanup(func() {
		_ = shutdown(context.Background())
	})
}

// TestStartSpan 测试Span创建与父子关系
func TestStartSpan(t *testing.T) {
	initTestTracer(t)

	t.Run("创建根Span", func(t *testing.T) {
		_, span := StartSpan(context.Background(), "bookmarket", "TestOperation")
		defer span.End()

		if !span.SpanContext().IsValid() {
			t.Error("Span无效")
		}
		traceID := span.SpanContext().TraceID().String()
		if traceID == "" || traceID == "00000000000000000000000000000000" {
			t.Errorf("TraceID无效: %s", traceID)
		}
	})

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx, rootSpan := StartSpan(context.Background(), "bookmarket", "RootOperation")
		defer rootSpan.End()

		_, childSpan := StartSpan(ctx, "bookmarket", "ChildOperation")
		defer childSpan.End()

		if childSpan.SpanContext().TraceID() != rootSpan.SpanContext().TraceID() {
			t.Error("子Span的TraceID应与根Span一致")
		}
		if childSpan.SpanContext().SpanID() == rootSpan.SpanContext().SpanID() {
			t.Error("子Span的SpanID不应与根Span相同")
		}
	})
}

// TestExtractIDs 测试TraceID/SpanID提取
func TestExtractIDs(t *testing.T) {
	initTestTracer(t)

	t.Run("有效Context", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "bookmarket", "TestExtract")
		defer span.End()

		traceID := ExtractTraceID(ctx)
		if len(traceID) != 32 {
			t.Errorf("TraceID长度错误: expected=32, got=%d", len(traceID))
		}
		spanID := ExtractSpanID(ctx)
		if len(spanID) != 16 {
			t.Errorf("SpanID长度错误: expected=16, got=%d", len(spanID))
		}
	})

	t.Run("无Span的Context返回空", func(t *testing.T) {
		if got := ExtractTraceID(context.Background()); got != "" {
			t.Errorf("期望空字符串，实际: %s", got)
		}
		if got := ExtractSpanID(context.Background()); got != "" {
			t.Errorf("期望空字符串，实际: %s", got)
		}
	})
}

// TestTransactionFlow 模拟一次下单的完整追踪链路
func TestTransactionFlow(t *testing.T) {
	initTestTracer(t)

	ctx, span := StartSpan(context.Background(), "bookmarket", "CreateTransaction")
	defer span.End()

	span.SetAttributes(
		attribute.Int("book_id", 1),
		attribute.Int("quantity", 2),
	)

	if err := lockStock(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.Fatalf("锁定库存失败: %v", err)
	}
	if err := settleWallet(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.Fatalf("钱包结算失败: %v", err)
	}

	span.SetStatus(codes.Ok, "交易创建成功")
}

func lockStock(ctx context.Context) error {
	_, span := StartSpan(ctx, "bookmarket", "LockStock")
	defer span.End()

	time.Sleep(5 * time.Millisecond)
	span.SetStatus(codes.Ok, "库存充足")
	return nil
}

func settleWallet(ctx context.Context) error {
	_, span := StartSpan(ctx, "bookmarket", "SettleWallet")
	defer span.End()

	time.Sleep(5 * time.Millisecond)
	span.SetStatus(codes.Ok, "结算完成")
	return nil
}
