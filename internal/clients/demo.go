package clients

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sleepstars/personachat/internal/models"
)

// DemoModel is reported as the model name of demo completions
const DemoModel = "demo"

var demoReplies = []string{
	"ピピッ！ロボ助です。ただいま多次元ストレージが点検中のため、本物の頭脳回路につながっていません。でも代わりに、銀河の果てで拾った虹色のネジをお届けします！",
	"こちらロボ助、時空トンネルの中から通信中！APIキーという魔法の鍵が見つからなくて、未来の図書館の扉が開かないのです。鍵を手に入れたら、もっと壮大なお話をしますね！",
	"ロボ助のアンテナがくるくる回っています…どうやら今日はデモモードの日！雲の上のお城でドラゴンとお茶会をしながら、本番の接続を待っています。",
	"ガガガ…ロボ助です！未来から持ってきた答えの箱は、まだ封印されたまま。封印を解くにはOPENAI_API_KEYの呪文が必要です！",
}

// DemoClient implements ModelClient without touching the network. It answers
// every request with one of a fixed set of persona replies.
type DemoClient struct {
	replies []string
	pick    func(n int) int
	now     func() time.Time
}

// NewDemoClient creates a demo client using the built-in replies
func NewDemoClient() *DemoClient {
	return NewDemoClientWithReplies(demoReplies)
}

// NewDemoClientWithReplies creates a demo client answering from replies
func NewDemoClientWithReplies(replies []string) *DemoClient {
	if len(replies) == 0 {
		replies = demoReplies
	}
	return &DemoClient{
		replies: replies,
		pick:    rand.Intn,
		now:     time.Now,
	}
}

func (c *DemoClient) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Timeout: err == context.DeadlineExceeded, Err: err}
	}

	return &models.ChatCompletionResponse{
		ID:      "chatcmpl-demo-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: c.now().Unix(),
		Model:   DemoModel,
		Choices: []models.ChatCompletionChoice{
			{
				Message: models.ChatCompletionMessage{
					Role:    models.RoleAssistant,
					Content: c.replies[c.pick(len(c.replies))],
				},
				FinishReason: "stop",
			},
		},
	}, nil
}
