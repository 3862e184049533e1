package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/nhdewitt/route-server/internal/config"
	"github.com/nhdewitt/route-server/internal/request"
	"github.com/nhdewitt/route-server/internal/routes"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "path to the TOML configuration file")
	listen := flag.String("listen", "", "accept TCP connections on this address and print how each request resolves")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		log.Fatalf("error finalizing config: %v", err)
	}

	registry := routes.Load(cfg.RouteTable(), func(r routes.Route) {
		fmt.Fprintf(os.Stderr, "warning: a route for %q already exists, ignoring %q\n", r.Key, r.Value)
	})

	printTable(os.Stdout, registry)
	for _, path := range flag.Args() {
		printResolved(os.Stdout, registry, path, cfg.Site.Fallback)
	}

	if *listen != "" {
		if err := listenAndPrint(*listen, registry, cfg.Site.Fallback); err != nil {
			log.Fatalf("error listening: %v", err)
		}
	}
}

func printTable(w io.Writer, registry *routes.Registry) {
	for path, resource := range registry.All() {
		fmt.Fprintf(w, "%s -> %s\n", path, resource)
	}
}

func printResolved(w io.Writer, registry *routes.Registry, path, fallback string) {
	if resource, ok := registry.Find(path); ok {
		fmt.Fprintf(w, "%s: %s\n", path, resource)
		return
	}
	if fallback != "" {
		fmt.Fprintf(w, "%s: %s (fallback)\n", path, fallback)
		return
	}
	fmt.Fprintf(w, "%s: not found\n", path)
}

func listenAndPrint(addr string, registry *routes.Registry, fallback string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	fmt.Println("Listening for TCP traffic on", listener.Addr())
	for {
		c, err := listener.Accept()
		if err != nil {
			return err
		}
		log.Println("Connection accepted:", c.RemoteAddr())

		req, err := request.RequestFromReader(c, 0)
		c.Close()
		if err != nil {
			log.Printf("error parsing request: %v", err)
			continue
		}

		fmt.Println("Request line:")
		fmt.Printf("- Method: %s\n", req.RequestLine.Method)
		fmt.Printf("- Target: %s\n", req.RequestLine.RequestTarget)
		fmt.Printf("- Version: %s\n", req.RequestLine.HttpVersion)
		printResolved(os.Stdout, registry, req.Path(), fallback)
	}
}
