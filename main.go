package main

import (
	"context"
	"log"
	"os"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/fakeyudi/skillbench/cmd"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.InfoLevel}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	if err := cmd.Execute(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("skillbench command failed")
		return 1
	}
	return 0
}
