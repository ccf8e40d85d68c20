// Package seed provides the campus task catalog used when no backend is
// reachable, plus loaders for seed files.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sadopc/campustasks/internal/task"
)

// CampusCenter is the approximate centre of the CityU Hong Kong campus.
var CampusCenter = task.Location{Lat: 22.3364, Lng: 114.2734, Name: "CityU"}

// generatedSeed keeps the generated part of the catalog identical across runs.
const generatedSeed = 20250909

var baseDate = time.Date(2025, time.September, 9, 4, 0, 0, 0, time.UTC)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func mins(n int) *int { return &n }

// Builtin returns the bundled catalog: the named campus tasks followed by 35
// generated exploration tasks. Each call returns a fresh slice.
func Builtin() []task.Task {
	tasks := []task.Task{
		{
			ID: "ac-001", Title: "参观学术楼一", Description: "探索学术楼一的各个教室和实验室，了解教学设施",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3370, Lng: 114.2740, Name: "学术楼一"},
			Rewards:  []string{"探索徽章", "10积分"}, EstimatedMinutes: mins(30), Course: task.Ptr("大学导论"),
			DueAt: ts("2025-09-15T23:59:59Z"), CreatedAt: ts("2025-09-09T04:00:00Z"),
		},
		{
			ID: "ac-002", Title: "计算机科学系实验室参观", Description: "参观计算机科学系的先进实验室，了解最新科研设备",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3375, Lng: 114.2745, Name: "计算机科学系"},
			Rewards:  []string{"科技徽章", "20积分"}, EstimatedMinutes: mins(45), Course: task.Ptr("计算机科学导论"),
			DueAt: ts("2025-09-12T23:59:59Z"), CreatedAt: ts("2025-09-09T04:00:00Z"),
		},
		{
			ID: "ac-003", Title: "参加学术讲座", Description: "参加在学术楼举办的学术讲座，拓展知识视野",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyHard, Status: task.StatusInProgress,
			Location: task.Location{Lat: 22.3368, Lng: 114.2738, Name: "学术楼二"},
			Rewards:  []string{"学者徽章", "50积分"}, EstimatedMinutes: mins(90), Course: task.Ptr("学术研究方法"),
			DueAt: ts("2025-09-10T18:00:00Z"), CreatedAt: ts("2025-09-08T04:00:00Z"),
		},
		{
			ID: "lib-001", Title: "图书馆导览", Description: "熟悉图书馆的各个区域和借阅流程",
			Category: task.CategoryCampus, Difficulty: task.DifficultyEasy, Status: task.StatusCompleted,
			Location: task.Location{Lat: 22.3360, Lng: 114.2730, Name: "邵逸夫图书馆"},
			Rewards:  []string{"读者徽章", "15积分"}, EstimatedMinutes: mins(40), Course: task.Ptr("信息素养"),
			DueAt: ts("2025-09-08T23:59:59Z"), CreatedAt: ts("2025-09-07T04:00:00Z"),
		},
		{
			ID: "lib-002", Title: "数字资源培训", Description: "学习使用图书馆的数字资源和数据库",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3362, Lng: 114.2732, Name: "图书馆培训室"},
			Rewards:  []string{"数字徽章", "25积分"}, EstimatedMinutes: mins(60), Course: task.Ptr("信息检索"),
			DueAt: ts("2025-09-16T23:59:59Z"), CreatedAt: ts("2025-09-09T04:00:00Z"),
		},
		{
			ID: "sc-001", Title: "学生会注册", Description: "在学生中心完成学生会注册，参与校园活动",
			Category: task.CategorySocial, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3355, Lng: 114.2725, Name: "学生中心"},
			Rewards:  []string{"社交徽章", "10积分"}, EstimatedMinutes: mins(20), Course: task.Ptr("学生发展"),
			DueAt: ts("2025-09-20T23:59:59Z"), CreatedAt: ts("2025-09-09T04:00:00Z"),
		},
		{
			ID: "sc-002", Title: "加入学生社团", Description: "选择并加入一个感兴趣的学生社团",
			Category: task.CategorySocial, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3357, Lng: 114.2727, Name: "社团活动室"},
			Rewards:  []string{"团队徽章", "30积分"}, EstimatedMinutes: mins(45),
		},
		{
			ID: "sc-003", Title: "组织社团活动", Description: "策划并组织一次社团活动，锻炼领导能力",
			Category: task.CategorySocial, Difficulty: task.DifficultyHard, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3359, Lng: 114.2729, Name: "多功能厅"},
			Rewards:  []string{"领导徽章", "60积分"}, EstimatedMinutes: mins(120),
		},
		{
			ID: "sp-001", Title: "体育馆参观", Description: "参观体育馆的各项运动设施",
			Category: task.CategoryCampus, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3350, Lng: 114.2720, Name: "体育馆"},
			Rewards:  []string{"运动徽章", "10积分"}, EstimatedMinutes: mins(30),
		},
		{
			ID: "sp-002", Title: "参加体育课程", Description: "报名并参加一门体育课程",
			Category: task.CategorySocial, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3352, Lng: 114.2722, Name: "运动场"},
			Rewards:  []string{"健康徽章", "25积分"}, EstimatedMinutes: mins(90),
		},
		{
			ID: "dh-001", Title: "食堂美食探索", Description: "尝试食堂的各种美食，体验校园饮食文化",
			Category: task.CategoryCampus, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3345, Lng: 114.2715, Name: "学生食堂"},
			Rewards:  []string{"美食徽章", "15积分"}, EstimatedMinutes: mins(45),
		},
		{
			ID: "rh-001", Title: "宿舍生活适应", Description: "熟悉宿舍环境，建立良好的宿舍关系",
			Category: task.CategorySocial, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3340, Lng: 114.2710, Name: "学生宿舍"},
			Rewards:  []string{"居住徽章", "20积分"}, EstimatedMinutes: mins(60),
		},
		{
			ID: "rh-002", Title: "宿舍文化活动", Description: "参与或组织宿舍的文化交流活动",
			Category: task.CategorySocial, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3342, Lng: 114.2712, Name: "宿舍公共区域"},
			Rewards:  []string{"文化徽章", "35积分"}, EstimatedMinutes: mins(75),
		},
		{
			ID: "cg-001", Title: "校园花园漫步", Description: "在校园花园中漫步，欣赏自然美景",
			Category: task.CategoryCampus, Difficulty: task.DifficultyEasy, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3365, Lng: 114.2735, Name: "校园花园"},
			Rewards:  []string{"自然徽章", "10积分"}, EstimatedMinutes: mins(25),
		},
		{
			ID: "ih-001", Title: "创新中心参观", Description: "参观创新中心，了解创业孵化项目",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyMedium, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3380, Lng: 114.2750, Name: "创新中心"},
			Rewards:  []string{"创新徽章", "40积分"}, EstimatedMinutes: mins(50),
		},
		{
			ID: "ih-002", Title: "创业项目提案", Description: "准备并提交一个创业项目提案",
			Category: task.CategoryAcademic, Difficulty: task.DifficultyHard, Status: task.StatusAvailable,
			Location: task.Location{Lat: 22.3382, Lng: 114.2752, Name: "创业孵化器"},
			Rewards:  []string{"企业家徽章", "80积分"}, EstimatedMinutes: mins(180),
		},
	}
	return append(tasks, generated(35)...)
}

var generatedCourses = []string{
	"数据结构与算法", "高等数学", "大学英语", "物理学基础", "化学原理",
	"生物学概论", "心理学导论", "社会学基础", "经济学原理", "管理学概论",
	"艺术欣赏", "体育与健康", "哲学思辨", "历史文化", "文学鉴赏",
}

func generated(n int) []task.Task {
	rng := rand.New(rand.NewSource(generatedSeed))
	day := 24 * time.Hour

	out := make([]task.Task, 0, n)
	for i := range n {
		created := baseDate.Add(time.Duration(float64(i) * float64(day) * (rng.Float64()*7 - 3)))
		due := created.Add(time.Duration((7 + rng.Float64()*14) * float64(day)))
		lat := CampusCenter.Lat + (rng.Float64()-0.5)*0.01
		lng := CampusCenter.Lng + (rng.Float64()-0.5)*0.01

		out = append(out, task.Task{
			ID:          fmt.Sprintf("extra-%03d", i+1),
			Title:       fmt.Sprintf("校园探索任务 %d", i+1),
			Description: "探索校园的隐藏角落，发现更多有趣的地方",
			Category:    task.Categories[i%3],
			Difficulty:  task.Difficulties[i%3],
			Status:      task.Statuses[i%3],
			Location: task.Location{
				Lat:  lat,
				Lng:  lng,
				Name: fmt.Sprintf("校园位置 %d", i+1),
			},
			Rewards:          []string{"探索徽章", fmt.Sprintf("%d积分", (i+1)*5)},
			EstimatedMinutes: mins(30 + (i%4)*15),
			Course:           task.Ptr(generatedCourses[i%len(generatedCourses)]),
			CreatedAt:        &created,
			DueAt:            &due,
		})
	}
	return out
}
