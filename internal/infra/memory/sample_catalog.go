package memory

import (
	"fmt"

	"quizbank-service/internal/domain"
)

type sampleQuestion struct {
	text        string
	options     []string
	correct     int
	explanation string
}

type bankTemplate struct {
	suffix      string
	title       string
	description string
	difficulty  string
	timeLimit   int
	avgScore    int
}

var bankTemplates = []bankTemplate{
	{"basic", "Basic Concepts", "Test your understanding of fundamental concepts", "Beginner", 20, 45},
	{"intermediate", "Intermediate Practice", "Challenge yourself with intermediate level problems", "Intermediate", 30, 62},
	{"advanced", "Advanced Challenge", "Master advanced concepts and problem-solving", "Advanced", 45, 34},
	{"revision", "Revision Test", "Quick revision of important topics", "Mixed", 25, 58},
	{"exam", "Exam Preparation", "Comprehensive exam preparation test", "Exam Level", 60, 71},
	{"mock", "Mock Test", "Full-length mock examination", "Mock Exam", 90, 67},
}

// SampleCatalog is the demo catalog served when no database is configured:
// every subject has six banks per class (1-12) plus a competitive bank.
func SampleCatalog() domain.Catalog {
	subjects := []domain.Subject{
		{ID: "hindi", Name: "Hindi", DisplayName: "Hindi", Icon: "fas fa-language", Color: "from-red-500 to-pink-500", Description: "Master the beauty of Hindi language"},
		{ID: "english", Name: "English", DisplayName: "English", Icon: "fas fa-book", Color: "from-blue-500 to-cyan-500", Description: "Enhance your English proficiency"},
		{ID: "math", Name: "Mathematics", DisplayName: "Mathematics", Icon: "fas fa-calculator", Color: "from-green-500 to-emerald-500", Description: "Solve complex mathematical problems"},
		{ID: "science", Name: "Science", DisplayName: "Science", Icon: "fas fa-flask", Color: "from-purple-500 to-indigo-500", Description: "Explore the wonders of science"},
		{ID: "social", Name: "Social Science", DisplayName: "Social Science", Icon: "fas fa-globe", Color: "from-yellow-500 to-orange-500", Description: "Understand society and culture"},
		{ID: "gk", Name: "General Knowledge", DisplayName: "General Knowledge", Icon: "fas fa-lightbulb", Color: "from-teal-500 to-cyan-500", Description: "Broaden your general awareness"},
		{ID: "contest", Name: "Contest", DisplayName: "Contest", Icon: "fas fa-trophy", Color: "from-rose-500 to-pink-500", Description: "Compete and win exciting prizes"},
	}

	catalog := domain.Catalog{Subjects: subjects}
	for _, subject := range subjects {
		base := subjectQuestions(subject.ID)
		for class := 1; class <= 12; class++ {
			for _, tpl := range bankTemplates {
				bank := domain.QuestionBank{
					ID:               fmt.Sprintf("%s-class-%d-%s", subject.ID, class, tpl.suffix),
					SubjectID:        subject.ID,
					ClassLevel:       fmt.Sprintf("class-%d", class),
					Title:            tpl.title,
					Description:      tpl.description,
					Difficulty:       tpl.difficulty,
					TimeLimitMinutes: tpl.timeLimit,
					TotalQuestions:   len(base),
					AvgScore:         tpl.avgScore,
				}
				catalog.Banks = append(catalog.Banks, bank)
				catalog.Questions = append(catalog.Questions, bankQuestions(bank.ID, base)...)
			}
		}

		competitive := competitiveQuestions(subject.ID)
		bank := domain.QuestionBank{
			ID:               subject.ID + "-competitive",
			SubjectID:        subject.ID,
			ClassLevel:       "competitive",
			Title:            "Competitive Exams",
			Description:      "JEE, NEET, UPSC & More",
			Difficulty:       "Expert",
			TimeLimitMinutes: 60,
			TotalQuestions:   len(competitive),
			AvgScore:         67,
		}
		catalog.Banks = append(catalog.Banks, bank)
		catalog.Questions = append(catalog.Questions, bankQuestions(bank.ID, competitive)...)
	}
	return catalog
}

func bankQuestions(bankID string, base []sampleQuestion) []domain.Question {
	out := make([]domain.Question, 0, len(base))
	for i, q := range base {
		out = append(out, domain.Question{
			ID:             fmt.Sprintf("%s-q%d", bankID, i+1),
			QuestionBankID: bankID,
			Text:           q.text,
			Options:        append([]string(nil), q.options...),
			CorrectAnswer:  q.correct,
			Explanation:    q.explanation,
		})
	}
	return out
}

func subjectQuestions(subjectID string) []sampleQuestion {
	switch subjectID {
	case "hindi":
		return []sampleQuestion{
			{"हिंदी भाषा की मुख्य विशेषता क्या है?", []string{"देवनागरी लिपि", "अरबी लिपि", "रोमन लिपि", "गुरुमुखी लिपि"}, 0, "हिंदी भाषा देवनागरी लिपि में लिखी जाती है।"},
			{"निम्न में से कौन सा शब्द तत्सम है?", []string{"आग", "सूर्य", "दूध", "पानी"}, 1, "सूर्य एक तत्सम शब्द है जो संस्कृत से आया है।"},
			{"हिंदी की उत्पत्ति किस भाषा से हुई है?", []string{"संस्कृत", "अरबी", "पर्शियन", "तुर्की"}, 0, "हिंदी भाषा का विकास संस्कृत भाषा से हुआ है।"},
		}
	case "english":
		return []sampleQuestion{
			{"What is the past tense of 'go'?", []string{"goed", "went", "gone", "going"}, 1, "The past tense of 'go' is 'went'."},
			{"Which of the following is a noun?", []string{"run", "quickly", "happiness", "blue"}, 2, "'Happiness' is a noun that represents a state of being."},
			{"What is the correct spelling?", []string{"recieve", "receive", "recive", "receeve"}, 1, "The correct spelling is 'receive' (i before e except after c)."},
		}
	case "math":
		return []sampleQuestion{
			{"What is 15 + 27?", []string{"41", "42", "43", "44"}, 1, "15 + 27 = 42"},
			{"What is the area of a square with side length 8 cm?", []string{"32 cm²", "64 cm²", "16 cm²", "24 cm²"}, 1, "Area of square = side × side = 8 × 8 = 64 cm²"},
			{"What is 144 ÷ 12?", []string{"11", "12", "13", "14"}, 1, "144 ÷ 12 = 12"},
		}
	case "science":
		return []sampleQuestion{
			{"What is the chemical symbol for water?", []string{"H2O", "CO2", "NaCl", "O2"}, 0, "Water is composed of two hydrogen atoms and one oxygen atom (H2O)."},
			{"Which planet is closest to the Sun?", []string{"Venus", "Mercury", "Earth", "Mars"}, 1, "Mercury is the closest planet to the Sun."},
			{"What gas do plants absorb from the atmosphere during photosynthesis?", []string{"Oxygen", "Nitrogen", "Carbon Dioxide", "Hydrogen"}, 2, "Plants absorb carbon dioxide during photosynthesis to make glucose."},
		}
	case "social":
		return []sampleQuestion{
			{"Who was the first Prime Minister of India?", []string{"Mahatma Gandhi", "Jawaharlal Nehru", "Sardar Patel", "Dr. Rajendra Prasad"}, 1, "Jawaharlal Nehru was India's first Prime Minister."},
			{"In which year did India gain independence?", []string{"1946", "1947", "1948", "1949"}, 1, "India gained independence on August 15, 1947."},
			{"Which river is known as the lifeline of India?", []string{"Yamuna", "Brahmaputra", "Ganga", "Godavari"}, 2, "The Ganga (Ganges) river is considered the lifeline of India."},
		}
	case "contest":
		return []sampleQuestion{
			{"Which programming language is known for its simplicity and readability?", []string{"C++", "Java", "Python", "Assembly"}, 2, "Python is known for its simple syntax and readability."},
			{"What does 'AI' stand for in technology?", []string{"Automated Intelligence", "Artificial Intelligence", "Advanced Integration", "Adaptive Interface"}, 1, "AI stands for Artificial Intelligence."},
			{"Which company developed the ChatGPT model?", []string{"Google", "Microsoft", "OpenAI", "Meta"}, 2, "ChatGPT was developed by OpenAI."},
		}
	default:
		return []sampleQuestion{
			{"What is the capital of France?", []string{"London", "Berlin", "Paris", "Madrid"}, 2, "Paris is the capital city of France."},
			{"Which is the largest ocean in the world?", []string{"Atlantic Ocean", "Indian Ocean", "Arctic Ocean", "Pacific Ocean"}, 3, "The Pacific Ocean is the largest ocean in the world."},
			{"Who invented the telephone?", []string{"Thomas Edison", "Alexander Graham Bell", "Nikola Tesla", "Albert Einstein"}, 1, "Alexander Graham Bell is credited with inventing the telephone."},
		}
	}
}

func competitiveQuestions(subjectID string) []sampleQuestion {
	return []sampleQuestion{
		{fmt.Sprintf("Advanced %s concept for competitive examinations?", subjectID), []string{"Advanced Option A", "Advanced Option B", "Advanced Option C", "Advanced Option D"}, 0, "For competitive exams, this concept requires deep understanding."},
		{fmt.Sprintf("Complex problem-solving in %s?", subjectID), []string{"Solution Method 1", "Solution Method 2", "Solution Method 3", "Solution Method 4"}, 1, "This method is most effective for competitive level problems."},
	}
}
