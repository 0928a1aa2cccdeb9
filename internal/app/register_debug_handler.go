// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/imu_computer/internal/sensors"
)

var upgrader = websocket.Upgrader{
	// The debug tool is served from the same host; allow any origin to keep
	// development against a laptop browser simple.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var (
	srcMu  sync.Mutex
	imuSrc *sensors.IMUSource
)

// SetIMUSource hands the live IMU source to the HTTP and WebSocket handlers.
func SetIMUSource(s *sensors.IMUSource) {
	srcMu.Lock()
	defer srcMu.Unlock()
	imuSrc = s
}

func imuSource() *sensors.IMUSource {
	srcMu.Lock()
	defer srcMu.Unlock()
	return imuSrc
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
}

// RegisterResponse is the single response envelope for all message types.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// HandleRegisterDebugWS handles the WebSocket connection for register debugging
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &RegisterDebugSession{Conn: conn}

	// Send register map on connection
	if err := session.sendRegisterMap(); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	// Message loop
	for {
		var rawMsg map[string]interface{}
		err := conn.ReadJSON(&rawMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}

		action, ok := rawMsg["action"].(string)
		if !ok {
			session.sendError("missing or invalid action field")
			continue
		}

		switch action {
		case "read":
			addr, _ := rawMsg["addr"].(string)
			session.handleRead(addr)
		case "read_all":
			session.handleReadAll()
		case "write":
			addr, _ := rawMsg["addr"].(string)
			value, _ := rawMsg["value"].(string)
			session.handleWrite(addr, value)
		case "register_map":
			if err := session.sendRegisterMap(); err != nil {
				log.Printf("register_debug: error sending register map: %v", err)
			}
		default:
			session.sendError(fmt.Sprintf("unknown action %q", action))
		}
	}
}

func (s *RegisterDebugSession) handleRead(addr string) {
	src := imuSource()
	if src == nil {
		s.sendError("IMU not available")
		return
	}
	reg, err := parseRegisterAddr(addr)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	val, err := src.Device().ReadRegister(reg)
	if err != nil {
		s.sendError(fmt.Sprintf("read 0x%02X: %v", reg, err))
		return
	}
	s.send(RegisterResponse{
		Type:      "register_data",
		Address:   fmt.Sprintf("0x%02X", reg),
		Value:     fmt.Sprintf("0x%02X", val),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleReadAll() {
	src := imuSource()
	if src == nil {
		s.sendError("IMU not available")
		return
	}
	regs := make(map[string]string)
	for _, info := range sensors.GetISM330DHCXRegisterMap() {
		reg, err := parseRegisterAddr(info.Address)
		if err != nil {
			continue
		}
		val, err := src.Device().ReadRegister(reg)
		if err != nil {
			s.sendError(fmt.Sprintf("read 0x%02X: %v", reg, err))
			return
		}
		regs[info.Address] = fmt.Sprintf("0x%02X", val)
	}
	s.send(RegisterResponse{
		Type:      "register_data",
		Registers: regs,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleWrite(addr, value string) {
	src := imuSource()
	if src == nil {
		s.sendError("IMU not available")
		return
	}
	reg, err := parseRegisterAddr(addr)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	val, err := strconv.ParseUint(value, 0, 8)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid register value %q", value))
		return
	}
	// Direct register writes bypass the driver's stored configuration; the
	// tool is for bring-up and datasheet spelunking, not production use.
	if err := src.Device().WriteRegister(reg, byte(val)); err != nil {
		s.sendError(fmt.Sprintf("write 0x%02X: %v", reg, err))
		return
	}
	s.send(RegisterResponse{
		Type:      "status",
		Address:   fmt.Sprintf("0x%02X", reg),
		Value:     fmt.Sprintf("0x%02X", byte(val)),
		Message:   "written",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		RegisterMap: sensors.GetISM330DHCXRegisterMap(),
	})
}

func (s *RegisterDebugSession) sendError(msg string) {
	s.send(RegisterResponse{Type: "error", Message: msg})
}

func (s *RegisterDebugSession) send(resp RegisterResponse) {
	if err := s.Conn.WriteJSON(resp); err != nil {
		log.Printf("register_debug: websocket write error: %v", err)
	}
}

func parseRegisterAddr(addr string) (byte, error) {
	v, err := strconv.ParseUint(addr, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register address %q", addr)
	}
	return byte(v), nil
}

// HandleIMUData serves one live reading as JSON.
func HandleIMUData(w http.ResponseWriter, r *http.Request) {
	src := imuSource()
	if src == nil {
		http.Error(w, "IMU not available", http.StatusServiceUnavailable)
		return
	}
	sample, err := src.Read()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sample); err != nil {
		log.Printf("register_debug: json encode error: %v", err)
	}
}
