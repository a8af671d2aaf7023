package redis

import "github.com/MrSnakeDoc/brightfeed/internal/logger"

func nopLogger() logger.Logger { return logger.NewNop() }
