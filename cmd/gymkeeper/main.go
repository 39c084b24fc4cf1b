package main

import (
	"context"

	"gymkeeper-backend/cmd/gymkeeper/commands"
	"gymkeeper-backend/lib/osutil"
	"gymkeeper-backend/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()

	// telemetry is optional for the CLI, a missing telemetry.json5 just
	// means no exported traces
	t, err := telemetry.SetupFromEnv(ctx, "gymkeeper")
	if err == nil {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}
	telemetry.InitSlog(false)

	commands.ExecuteContext(ctx)
}
