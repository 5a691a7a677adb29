package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-planar-arm/internal/log"
	"github.com/teslashibe/go-planar-arm/pkg/protocol"
)

var (
	watchAddr    string
	watchPing    time.Duration
	watchMoveTo  string
	watchTimeout time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Follow the state stream of a running armd",
		Long: `watch connects to /ws/state and prints every state and result message.
With --moveto it sends one target first and prints the solve result.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "localhost:8080", "armd host:port")
	watchCmd.Flags().DurationVar(&watchPing, "ping", 0, "send a ping at this interval and print the latency")
	watchCmd.Flags().StringVar(&watchMoveTo, "moveto", "", "send a moveto command for x,y after connecting")
	watchCmd.Flags().DurationVar(&watchTimeout, "dial-timeout", 5*time.Second, "connection timeout")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u := url.URL{Scheme: "ws", Host: watchAddr, Path: "/ws/state"}
	dialer := websocket.Dialer{HandshakeTimeout: watchTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", u.String(), err)
	}
	defer conn.Close()

	logger := log.For("watch")
	logger.Info("connected", "url", u.String())
	out := cmd.OutOrStdout()

	if watchMoveTo != "" {
		t, err := parseTarget(watchMoveTo)
		if err != nil {
			return err
		}
		msg, err := protocol.NewMoveToMessage(t[0], t[1], "")
		if err != nil {
			return err
		}
		if err := writeMessage(conn, msg); err != nil {
			return err
		}
	}

	if watchPing > 0 {
		go pingLoop(ctx, conn, watchPing)
	}

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			logger.Warn("invalid message", "error", err)
			continue
		}
		printMessage(out, msg)
	}
}

func writeMessage(conn *websocket.Conn, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// pingLoop shares conn with the reader; gorilla allows one concurrent writer.
func pingLoop(ctx context.Context, conn *websocket.Conn, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg, err := protocol.NewPingMessage(uuid.NewString())
			if err != nil {
				return
			}
			if err := writeMessage(conn, msg); err != nil {
				return
			}
		}
	}
}

func printMessage(w io.Writer, msg *protocol.Message) {
	stamp := mutedStyle.Render(time.UnixMilli(msg.Timestamp).Format("15:04:05.000"))

	switch msg.Type {
	case protocol.TypeState:
		data, err := msg.GetStateData()
		if err != nil {
			return
		}
		tip := [2]float64{}
		if n := len(data.Positions); n > 0 {
			tip = data.Positions[n-1]
		}
		fmt.Fprintf(w, "%s %s tip=%s angles=%s\n", stamp, titleStyle.Render("state"),
			formatPoint(tip), formatAngles(data.Angles))

	case protocol.TypeResult:
		data, err := msg.GetResultData()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "%s %s %s %s iterations=%d distance=%.5f elapsed=%.2fms\n", stamp,
			titleStyle.Render("result"), data.Algorithm, outcomeText(data.Outcome),
			data.Iterations, data.Distance, data.ElapsedMs)

	case protocol.TypePong:
		data, err := msg.GetPongData()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "%s %s latency=%dms\n", stamp, mutedStyle.Render("pong"), data.LatencyMs)

	case protocol.TypeError:
		data, err := msg.GetErrorData()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "%s %s %s: %s\n", stamp, failStyle.Render("error"), data.Request, data.Error)

	default:
		fmt.Fprintf(w, "%s %s\n", stamp, msg.Type)
	}
}
