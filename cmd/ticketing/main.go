package main

import (
	"context"
	"flag"
	l "log"

	"eventers-ticketing/config"
	c "eventers-ticketing/context"
	"eventers-ticketing/factory"
	"eventers-ticketing/logger"
	"eventers-ticketing/router"

	"github.com/codegangsta/negroni"
	"github.com/spf13/viper"
)

const defaultCorrelationID = "00000000.00000000"

var ctx context.Context

func init() {
	ctx = c.SetContextWithValue(context.Background(), c.ContextKeyCorrelationID, defaultCorrelationID)
}

func main() {
	cfgPath := flag.String("CONFIG_PATH", "./config.yaml", "Path to config file")
	flag.Parse()

	viper.SetConfigFile(*cfgPath)
	if err := viper.ReadInConfig(); err != nil {
		l.Fatalf("error reading config: %v", err)
	}
	logger.SetLevel(viper.GetString(config.LogLevel))

	muxRouter := router.Router(router.Build(ctx, factory.NewFactory()))

	n := negroni.New()
	n.UseHandler(muxRouter)
	logger.Infof(ctx, "ticketing: listening on %s", viper.GetString(config.Port))
	n.Run(viper.GetString(config.Port))
}
