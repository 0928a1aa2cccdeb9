// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"net/http"

	"github.com/relabs-tech/imu_computer/internal/app"
	"github.com/relabs-tech/imu_computer/internal/config"
	"github.com/relabs-tech/imu_computer/internal/sensors"
)

func main() {
	log.Println("starting imu-computer calibration tool")

	if err := config.InitGlobal("imu_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Initializing IMU...")
	src, err := sensors.NewIMUSource()
	if err != nil {
		log.Fatalf("failed to initialize IMU: %v", err)
	}
	defer src.Close()
	app.SetIMUSource(src)

	http.HandleFunc("/ws", app.HandleCalibrationWS)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/calibration.html")
	})

	addr := ":8082"
	log.Printf("Calibration tool listening on %s", addr)
	log.Printf("Open http://localhost:8082 in your browser")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
