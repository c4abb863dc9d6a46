package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meadori/dualscreen/controller"
	"github.com/meadori/dualscreen/layout"
	"github.com/meadori/dualscreen/server"
)

// tapFrames is how long a tap stays in contact.
const tapFrames = 3

func main() {
	addr := flag.String("addr", "localhost:50051", "Workspace service address")
	flag.Parse()

	fmt.Println("padctl - dual screen workspace remote")
	fmt.Printf("Connecting to workspace on %s...\n", *addr)

	client, err := server.Dial(*addr)
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Connected. Type 'help' for commands.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(padctl) ")
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help", "h":
			fmt.Println("Commands:")
			fmt.Println("  tap <1-12|x y>   - Touch a hotspot or a pixel briefly")
			fmt.Println("  down <1-12|x y>  - Touch and hold")
			fmt.Println("  up               - Release the pointer")
			fmt.Println("  swap             - Tap the swap button")
			fmt.Println("  keys [0-9[]...]  - Hold keypad keys; no argument releases")
			fmt.Println("  state, s         - Print workspace state")
			fmt.Println("  frame <file>     - Save the current workspace as PNG")
			fmt.Println("  quit, q          - Exit")
		case "quit", "q", "exit":
			return
		case "tap", "down":
			pt, err := resolve(ctx, client, parts[1:])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := touch(ctx, client, pt, cmd == "tap"); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "up":
			if err := client.SendPointer(ctx, server.Pointer{}); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "swap":
			pt, err := resolveButton(ctx, client, layout.SwapButtonIdx)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := touch(ctx, client, pt, true); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "keys":
			word, err := keypadWord(strings.Join(parts[1:], ""))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := client.SetKeys(ctx, word); err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("Keypad word: 0x%02X\n", word)
			}
		case "state", "s":
			printState(ctx, client)
		case "frame":
			if len(parts) != 2 {
				fmt.Println("Usage: frame <file.png>")
				continue
			}
			data, err := client.GetFramePNG(ctx)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := os.WriteFile(parts[1], data, 0o644); err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				fmt.Printf("Wrote %d bytes to %s\n", len(data), parts[1])
			}
		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
	}
}

func touch(ctx context.Context, client *server.Client, pt image.Point, release bool) error {
	if err := client.SendPointer(ctx, server.Pointer{X: pt.X, Y: pt.Y, Contact: true}); err != nil {
		return err
	}
	if !release {
		return nil
	}
	time.Sleep(tapFrames * time.Second / 60)
	return client.SendPointer(ctx, server.Pointer{X: pt.X, Y: pt.Y})
}

// workspaceLayout mirrors the remote pane order locally.
func workspaceLayout(ctx context.Context, client *server.Client) (*layout.Model, error) {
	st, err := client.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if !st.DualScreen {
		return nil, fmt.Errorf("dual screen is off")
	}
	return localLayout(st), nil
}

// localLayout rebuilds the remote hotspot grid and pane order.
func localLayout(st server.State) *layout.Model {
	m := layout.New()
	if st.BackgroundWidth > 0 {
		m.Rebuild(st.BackgroundWidth)
	}
	m.SetMirrored(st.Mirrored)
	return m
}

func resolve(ctx context.Context, client *server.Client, args []string) (image.Point, error) {
	if len(args) == 2 {
		return parsePoint(args)
	}
	m, err := workspaceLayout(ctx, client)
	if err != nil {
		return image.Point{}, err
	}
	return target(m, args)
}

func resolveButton(ctx context.Context, client *server.Client, i int) (image.Point, error) {
	m, err := workspaceLayout(ctx, client)
	if err != nil {
		return image.Point{}, err
	}
	return center(m.ButtonRect(i)), nil
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func parsePoint(args []string) (image.Point, error) {
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid x: %s", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid y: %s", args[1])
	}
	return image.Pt(x, y), nil
}

// target resolves "n" to the centre of hotspot n (1-based) or "x y" to a
// pixel.
func target(m *layout.Model, args []string) (image.Point, error) {
	switch len(args) {
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(m.HotSpots) {
			return image.Point{}, fmt.Errorf("hotspot must be 1-%d", len(m.HotSpots))
		}
		return center(m.HotSpotRect(n - 1)), nil
	case 2:
		return parsePoint(args)
	}
	return image.Point{}, fmt.Errorf("usage: <1-12> or <x> <y>")
}

// keypadWord ORs the codes of every key rune in s.
func keypadWord(s string) (uint16, error) {
	var word uint16
	for _, r := range s {
		code, ok := controller.KeyForRune(r)
		if !ok {
			return 0, fmt.Errorf("not a keypad key: %q", r)
		}
		word |= code
	}
	return word, nil
}

func printState(ctx context.Context, client *server.Client) {
	st, err := client.GetState(ctx)
	if err != nil {
		fmt.Printf("Error getting state: %v\n", err)
		return
	}
	title := st.Title
	if title == "" {
		title = "(none)"
	}
	fmt.Printf("Tick: %d  Title: %s  Size: %dx%d\n", st.Tick, title, st.Width, st.Height)
	fmt.Printf("Dual screen: %v  Mirrored: %v  Word: 0x%02X\n", st.DualScreen, st.Mirrored, st.Word)
	fmt.Printf("Active hotspots: %v  Pressed: %v\n", st.Active, st.Pressed)
}
