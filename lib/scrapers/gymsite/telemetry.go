package gymsite

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("scrapers/gymsite")
