package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lamplight-Studio/idea-print-agent/internal/platform/auth/hmacverifier"
)

// Dev-only request signer.
//
// Builds a /print request body, signs it with the shared HMAC secret, and
// prints the body plus the X-Timestamp and X-Signature header values. Handy
// for exercising a running agent with curl:
//
//	eval "$(signer -secret abc -text 'try a pedal-powered blender' -curl)"

func main() {
	secret := flag.String("secret", os.Getenv("HMAC_SECRET"), "shared HMAC secret (defaults to HMAC_SECRET)")
	text := flag.String("text", "", "idea text to print")
	ideaID := flag.String("idea-id", "", "optional idea id")
	requestID := flag.String("request-id", "", "request id for dedupe (generated when empty)")
	body := flag.String("body", "", "sign this exact body instead of building one")
	url := flag.String("url", "http://localhost:8000/print", "agent endpoint, used by -curl")
	asCurl := flag.Bool("curl", false, "emit a ready-to-run curl command")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "no secret: pass -secret or set HMAC_SECRET")
		os.Exit(2)
	}

	payload := *body
	if payload == "" {
		if strings.TrimSpace(*text) == "" {
			fmt.Fprintln(os.Stderr, "nothing to sign: pass -text or -body")
			os.Exit(2)
		}
		rid := *requestID
		if rid == "" {
			rid = uuid.NewString()
		}
		b, err := json.Marshal(map[string]string{
			"idea_text":  *text,
			"idea_id":    *ideaID,
			"request_id": rid,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal body: %v\n", err)
			os.Exit(1)
		}
		payload = string(b)
	}

	ts := time.Now().Unix()
	sig := hmacverifier.SignAt([]byte(*secret), ts, []byte(payload))

	if *asCurl {
		fmt.Printf("curl -sS -X POST %s -H 'Content-Type: application/json' -H 'X-Timestamp: %d' -H 'X-Signature: %s' -d %s\n",
			*url, ts, sig, shellQuote(payload))
		return
	}

	fmt.Printf("X-Timestamp: %d\n", ts)
	fmt.Printf("X-Signature: %s\n", sig)
	fmt.Printf("body: %s\n", payload)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
