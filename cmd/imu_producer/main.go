// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/imu_computer/internal/app"
	"github.com/relabs-tech/imu_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./imu_config.txt", "path to configuration file")
	useMock := flag.Bool("mock", false, "publish a synthetic pose instead of reading hardware")
	flag.Parse()

	log.Println("starting imu-computer producer (ISM330DHCX → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunIMUProducer(*useMock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
