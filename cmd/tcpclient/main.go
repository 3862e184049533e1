package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"
)

const maxResponse = 64 << 10

func main() {
	addr := flag.String("addr", "127.0.0.1:2137", "address of the route server")
	timeout := flag.Duration("timeout", 5*time.Second, "dial and read timeout")
	flag.Parse()

	if flag.NArg() > 0 {
		for _, path := range flag.Args() {
			if err := fetch(*addr, path, *timeout, os.Stdout); err != nil {
				log.Fatalf("fetch %s: %v", path, err)
			}
		}
		return
	}

	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := r.ReadString('\n')
		if path := strings.TrimSpace(line); path != "" {
			if ferr := fetch(*addr, path, *timeout, os.Stdout); ferr != nil {
				log.Printf("fetch error: %v", ferr)
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("input error: %v", err)
			}
			return
		}
	}
}

// fetch sends one GET for path over a fresh connection and copies the
// response to w. The server closes the connection after answering.
func fetch(addr, path string, timeout time.Duration, w io.Writer) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("error dialing %s: %w", addr, err)
	}
	defer conn.Close()

	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	req := "GET " + path + " HTTP/1.1\r\nHost: " + addr + "\r\nConnection: close\r\n\r\n"
	if _, err := io.WriteString(conn, req); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	if _, err := io.Copy(w, io.LimitReader(conn, maxResponse)); err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	return nil
}
