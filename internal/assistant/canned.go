// Package assistant answers questions about a single task. Canned is the
// offline responder used whenever the backend chat endpoint is unavailable.
package assistant

import (
	"fmt"
	"strings"

	"github.com/sadopc/campustasks/internal/task"
)

// MaxQuestionLen bounds a question in runes, matching the backend.
const MaxQuestionLen = 500

type Question struct {
	Task task.Task
	Text string
	// Catalog is searched for related tasks. May be nil.
	Catalog []task.Task
}

type Citation struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type Suggestion struct {
	Type        string `json:"type"`
	TaskID      string `json:"task_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type MapAnchor struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Reply struct {
	Message     string       `json:"answer"`
	Citations   []Citation   `json:"citations"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	MapAnchor   MapAnchor    `json:"map_anchor"`
}

// Topic is the intent a question was matched to.
type Topic string

const (
	TopicLocation   Topic = "location"
	TopicDifficulty Topic = "difficulty"
	TopicTime       Topic = "time"
	TopicReward     Topic = "reward"
	TopicRelated    Topic = "related"
	TopicHelp       Topic = "help"
	TopicDefault    Topic = "default"
)

// Keywords are checked in this order; the first topic with a hit wins.
var keywords = []struct {
	topic Topic
	words []string
}{
	{TopicLocation, []string{"位置", "地点", "在哪", "where", "location", "how to get"}},
	{TopicDifficulty, []string{"难度", "困难", "difficult", "difficulty", "hard"}},
	{TopicTime, []string{"时间", "多久", "用时", "how long", "time", "duration"}},
	{TopicReward, []string{"奖励", "收获", "好处", "reward", "points", "badge"}},
	{TopicRelated, []string{"建议", "推荐", "相关", "类似", "related", "similar", "recommend", "suggest"}},
	{TopicHelp, []string{"帮助", "怎么", "如何", "help", "how"}},
}

// Classify maps free text to a topic.
func Classify(text string) Topic {
	in := strings.ToLower(text)
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(in, w) {
				return k.topic
			}
		}
	}
	return TopicDefault
}

var difficultyNames = map[task.Difficulty]string{
	task.DifficultyEasy:   "简单",
	task.DifficultyMedium: "中等",
	task.DifficultyHard:   "困难",
}

// Canned produces keyword-matched replies without any network access.
type Canned struct{}

func (Canned) Reply(q Question) Reply {
	t := q.Task
	title := t.Title
	if title == "" {
		title = "该任务"
	}
	r := Reply{
		Citations: []Citation{},
		MapAnchor: MapAnchor{Lat: t.Location.Lat, Lng: t.Location.Lng},
	}

	switch Classify(q.Text) {
	case TopicLocation:
		where := t.Location.Name
		if where == "" {
			where = "校园内"
		}
		r.Message = fmt.Sprintf("%s位于%s（%.4f, %.4f）。根据校园地图数据，您可以通过导航系统轻松找到目标位置。",
			title, where, t.Location.Lat, t.Location.Lng)
		r.Citations = append(r.Citations, Citation{Source: "CityU地理信息系统", Content: "校园地图定位数据", Score: 0.95})

	case TopicDifficulty:
		level, ok := difficultyNames[t.Difficulty]
		if !ok {
			level = "未知"
		}
		r.Message = fmt.Sprintf("根据任务评估系统，这个任务的难度等级为%s。建议您根据自己的能力和经验来决定是否接取。", level)
		r.Citations = append(r.Citations, Citation{Source: "任务评估系统", Content: "任务难度: " + level, Score: 0.98})

	case TopicTime:
		if t.EstimatedMinutes != nil {
			r.Message = fmt.Sprintf("这个任务预计需要约%d分钟。具体时间会因个人能力和任务复杂度而有所不同。", *t.EstimatedMinutes)
			r.Citations = append(r.Citations, Citation{Source: "任务信息", Content: fmt.Sprintf("预计用时: %d分钟", *t.EstimatedMinutes), Score: 0.9})
		} else {
			r.Message = "根据历史完成数据分析，大多数学生完成类似任务的平均用时在30-60分钟之间。具体时间会因个人能力和任务复杂度而有所不同。"
			r.Citations = append(r.Citations, Citation{Source: "历史数据分析", Content: "平均完成时间: 30-60分钟", Score: 0.85})
		}

	case TopicReward:
		r.Message = "完成任务不仅能获得学分和奖励，更重要的是能提升实践能力和校园参与度。这些经历将成为您大学生活的宝贵财富。"
		if len(t.Rewards) > 0 {
			r.Message = fmt.Sprintf("完成该任务可获得：%s。", strings.Join(t.Rewards, "、")) + r.Message
		}
		r.Citations = append(r.Citations, Citation{Source: "学生发展中心", Content: "任务完成奖励机制", Score: 0.92})

	case TopicRelated:
		r.Message = "基于您当前查看的任务，我为您推荐了一些相关的任务。这些任务在类别方面与当前任务相似，可能符合您的兴趣。"
		r.Suggestions = Related(t, q.Catalog, 3)
		if len(r.Suggestions) == 0 {
			r.Message = "暂时没有找到与当前任务类别相同的其他任务。"
		}

	case TopicHelp:
		r.Message = "我可以帮您了解任务的各个方面，包括：\n• 任务位置和导航\n• 难度评估和要求\n• 预计完成时间\n• 奖励和收获\n• 相关任务推荐\n\n请告诉我您想了解哪个方面？"

	default:
		r.Message = "感谢您的提问！我是您的任务助手，专门帮助您了解校园任务的相关信息。您可以询问任务的位置、难度、时间要求、奖励等任何相关问题。"
	}
	return r
}

// Related picks up to limit other tasks sharing t's category, in catalog order.
func Related(t task.Task, catalog []task.Task, limit int) []Suggestion {
	var out []Suggestion
	for _, c := range catalog {
		if len(out) >= limit {
			break
		}
		if c.ID == t.ID || c.Category != t.Category {
			continue
		}
		out = append(out, Suggestion{
			Type:        "related_task",
			TaskID:      c.ID,
			Title:       c.Title,
			Description: fmt.Sprintf("与%s类别相关", t.Category),
		})
	}
	return out
}

// ValidateQuestion checks the length bounds the backend enforces.
func ValidateQuestion(text string) error {
	n := len([]rune(strings.TrimSpace(text)))
	if n == 0 {
		return fmt.Errorf("question must not be empty")
	}
	if n > MaxQuestionLen {
		return fmt.Errorf("question exceeds %d characters", MaxQuestionLen)
	}
	return nil
}
