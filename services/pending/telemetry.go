package pending

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/pending")
