package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/czx402/cz-live/backend/internal/analysis/emotion"
	"github.com/czx402/cz-live/backend/internal/hub"
	"github.com/czx402/cz-live/backend/pkg/client"
)

// chatclient 是一个命令行观众端：连接直播后端，打印事件流，
// 并通过标准输入发送聊天消息。用于联调后端，无需浏览器。

type messagePayload struct {
	Message  string `json:"message"`
	Sender   string `json:"sender"`
	Username string `json:"username"`
	Emotion  string `json:"emotion"`
	Audio    string `json:"audioBase64"`
}

// logPlayer stands in for a real audio sink: it reports payload size and
// completes after a short simulated playback.
type logPlayer struct{}

func (logPlayer) Play(audioBase64 string, done func(err error)) {
	log.Printf("[audio] playing %d base64 bytes", len(audioBase64))
	time.AfterFunc(300*time.Millisecond, func() { done(nil) })
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	wsURL := flag.String("url", "ws://localhost:8080/ws", "直播 WebSocket 地址")
	httpBase := flag.String("http", "http://localhost:8080", "HTTP 回退基础地址")
	username := flag.String("user", "", "聊天显示名，留空则匿名")
	timeout := flag.Duration("timeout", client.DefaultDialTimeout, "WebSocket 连接超时，超时后降级到 HTTP")
	flag.Parse()

	transport := client.Dial(context.Background(), *wsURL, *httpBase, *timeout)
	defer transport.Close()

	if transport.IsLive() {
		log.Printf("connected to live channel %s", *wsURL)
	} else {
		log.Printf("live channel unavailable, polling %s", *httpBase)
	}

	state := client.NewEmotionState(func(tag emotion.Tag) {
		log.Printf("[emotion] -> %s", tag)
	})
	queue := client.NewPlaybackQueue(logPlayer{}, state.PlaybackEnded)

	go consumeEvents(transport, state, queue)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("type a message and press enter (ctrl-d to quit)")
	for scanner.Scan() {
		content := strings.TrimSpace(scanner.Text())
		if content == "" {
			continue
		}
		if err := transport.Send(context.Background(), content, *username); err != nil {
			log.Printf("[send] failed: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("stdin error: %v", err)
	}
}

func consumeEvents(transport client.ChatTransport, state *client.EmotionState, queue *client.PlaybackQueue) {
	for event := range transport.Events() {
		switch event.Type {
		case hub.EventConnection:
			var data struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(event.Data, &data)
			log.Printf("[server] %s", data.Message)

		case hub.EventViewerCount:
			var data struct {
				Count int `json:"count"`
			}
			_ = json.Unmarshal(event.Data, &data)
			log.Printf("[viewers] %d", data.Count)

		case hub.EventUserMessage:
			var msg messagePayload
			_ = json.Unmarshal(event.Data, &msg)
			log.Printf("[chat] %s: %s", msg.Username, msg.Message)

		case hub.EventCZEmotion:
			var data struct {
				Emotion string `json:"emotion"`
			}
			_ = json.Unmarshal(event.Data, &data)
			state.Apply(data.Emotion)

		case hub.EventCZMessage:
			var msg messagePayload
			_ = json.Unmarshal(event.Data, &msg)
			log.Printf("[cz] %s", msg.Message)
			state.MessageArrived(msg.Audio != "")
			if msg.Audio != "" {
				queue.Enqueue(msg.Audio)
			}

		case hub.EventError:
			var data struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(event.Data, &data)
			log.Printf("[server error] %s", data.Message)

		default:
			// Forward compatibility: unknown event types are skipped.
		}
	}
	log.Println("event stream closed")
	os.Exit(0)
}
