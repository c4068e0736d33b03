// Browser smoke test: start the sitelens server, push a crawl corpus,
// then render the proxy and archived-page endpoints in a real browser.

package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const serverPath = "../bin/sitelens"
const serverAddr = "http://localhost:8080"

const sampleCorpus = `{
	"success": true,
	"total_pages": 2,
	"url_crawled": "https://example.com",
	"pages": [
		{"url": "https://example.com/", "markdown": "# Welcome\n\nThis is the example home page used by the browser smoke test.", "depth": 0},
		{"url": "https://example.com/docs", "markdown": "# Documentation\n\nRead the docs before filing an issue.", "depth": 1}
	]
}`

func main() {
	log.SetFlags(log.Ltime)

	// Step 1: Start the server
	log.Printf("Starting sitelens server...")
	serverCmd := exec.Command(serverPath, "-quiet")
	serverCmd.Stdout = os.Stdout
	serverCmd.Stderr = os.Stderr

	if err := serverCmd.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	defer serverCmd.Process.Kill()

	log.Printf("Server started (PID: %d)", serverCmd.Process.Pid)
	waitForHealth()

	// Step 2: Push the sample corpus
	log.Printf("Pushing sample corpus...")
	resp, err := http.Post(serverAddr+"/api/corpus", "application/json", bytes.NewReader([]byte(sampleCorpus)))
	if err != nil {
		log.Fatalf("Could not push corpus: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Corpus push returned %d", resp.StatusCode)
	}

	// Step 3: Launch the browser
	if err := playwright.Install(); err != nil {
		log.Fatalf("Could not install playwright: %v", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		log.Fatalf("Could not start playwright: %v", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		log.Fatalf("Could not launch browser: %v", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		log.Fatalf("Could not create page: %v", err)
	}

	// Step 4: Render an archived corpus page
	log.Printf("Rendering archived page...")
	archivedURL := serverAddr + "/api/page?url=" + "https%3A%2F%2Fexample.com%2Fdocs"
	if _, err := page.Goto(archivedURL); err != nil {
		log.Fatalf("Could not open archived page: %v", err)
	}

	heading, err := page.Locator("h1").TextContent()
	if err != nil || !strings.Contains(heading, "Documentation") {
		log.Fatalf("Archived render missing heading, got %q (err: %v)", heading, err)
	}

	anchorID, err := page.Locator("h1").GetAttribute("data-anchor-id")
	if err != nil || anchorID != "h-0" {
		log.Fatalf("Archived render missing scroll anchor, got %q (err: %v)", anchorID, err)
	}
	log.Printf("Archived page rendered with heading %q and anchor %s", heading, anchorID)

	// Step 5: Render a live page through the proxy
	log.Printf("Rendering live page through proxy...")
	proxyURL := serverAddr + "/api/proxy?url=" + "https%3A%2F%2Fexample.com%2F"
	if _, err := page.Goto(proxyURL); err != nil {
		log.Fatalf("Could not open proxied page: %v", err)
	}

	base, err := page.Locator("base").GetAttribute("href")
	if err != nil || base == "" {
		log.Fatalf("Proxied page missing base tag (err: %v)", err)
	}
	log.Printf("Proxied page rendered with base %s", base)

	fmt.Println("PASS: browser smoke test completed")
}

func waitForHealth() {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(serverAddr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatalf("Server did not become healthy")
}
