// Command gatetoken prints a signed token for one gate device scanning one event.
package main

import (
	"flag"
	"fmt"
	l "log"

	"eventers-ticketing/auth"
	"eventers-ticketing/clock"
	"eventers-ticketing/config"

	"github.com/spf13/viper"
)

func main() {
	cfgPath := flag.String("CONFIG_PATH", "./config.yaml", "Path to config file")
	gateID := flag.String("gate", "", "Gate device id")
	eventID := flag.String("event", "", "Event the gate admits to")
	flag.Parse()

	viper.SetConfigFile(*cfgPath)
	if err := viper.ReadInConfig(); err != nil {
		l.Fatalf("error reading config: %v", err)
	}

	gate, err := auth.NewGate([]byte(viper.GetString(config.Secret)), viper.GetDuration(config.GateToken), clock.NewSystem())
	if err != nil {
		l.Fatalln(err)
	}

	token, err := gate.Issue(*gateID, *eventID)
	if err != nil {
		l.Fatalln(err)
	}
	fmt.Println(token)
}
