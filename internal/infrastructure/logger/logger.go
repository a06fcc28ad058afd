// Package logger 把 gclog 接入 kratos 的 log.Logger 接口。
package logger

import (
	"context"
	"os"

	gclog "github.com/bionicotaku/lingo-utils/gclog"

	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
)

// New 构造服务日志器。环境与主机名直接取自运行环境，
// 输出附带 trace_id / span_id 动态字段。
func New(service, version string) (log.Logger, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	host, _ := os.Hostname()

	base, err := gclog.NewLogger(
		gclog.WithService(service),
		gclog.WithVersion(version),
		gclog.WithEnvironment(env),
		gclog.WithStaticLabels(map[string]string{"service.id": host}),
		gclog.EnableSourceLocation(),
	)
	if err != nil {
		return nil, err
	}
	return log.With(base, "trace_id", traceID(), "span_id", spanID()), nil
}

func traceID() log.Valuer {
	return func(ctx context.Context) interface{} {
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			return sc.TraceID().String()
		}
		return ""
	}
}

func spanID() log.Valuer {
	return func(ctx context.Context) interface{} {
		if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
			return sc.SpanID().String()
		}
		return ""
	}
}
