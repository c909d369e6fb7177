package main

import (
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/grandcat/zeroconf"

	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/api"
	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/hub"
	"github.com/TanyaSahdeo22/Tanya-SummAI-Backend/internal/store"
)

func main() {
	addr := os.Getenv("SUMMAI_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	st := store.New()
	h := hub.New(st)
	router := api.NewRouter(st, h)

	if os.Getenv("SUMMAI_MDNS") != "off" {
		go advertise(addr)
	}

	log.Printf("SummAI collab server starting on %s...", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// advertise registers the server over mDNS so agents on the local network
// can find it without configuration. The registration lives as long as the
// process.
func advertise(addr string) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		log.Printf("mDNS registration skipped, bad address %q: %v", addr, err)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Printf("mDNS registration skipped, bad port %q: %v", portStr, err)
		return
	}
	host, _ := os.Hostname()
	server, err := zeroconf.Register("SummAI-"+host, "_summai._tcp", "local.", port, []string{"txtv=0"}, nil)
	if err != nil {
		log.Printf("Failed to register mDNS service: %v", err)
		return
	}
	defer server.Shutdown()
	log.Printf("mDNS service registered: _summai._tcp on port %d", port)
	select {}
}
