package generation

import (
	"fmt"
	"strings"
)

// joinRecent renders the last n entries of a history list for a prompt.
func joinRecent(items []string, n int, sep, lang string) string {
	if len(items) == 0 {
		if lang == "en" {
			return "none"
		}
		return "لا يوجد"
	}
	if len(items) > n {
		items = items[len(items)-n:]
	}
	return strings.Join(items, sep)
}

func lessonPrompt(req LessonRequest, lang string) string {
	titles := joinRecent(req.RecentTitles, 8, ", ", lang)
	questions := joinRecent(req.RecentQuestions, 8, " | ", lang)

	if lang == "en" {
		return fmt.Sprintf(
			"Create one concise trading lesson in strict JSON.\n"+
				"Curriculum position: lesson %d of %d\n"+
				"Level: %s\n"+
				"Access: %s\n"+
				"Focus: %s\n"+
				"Avoid repeating these recent lesson titles: %s\n"+
				"Avoid repeating these recent quiz questions: %s\n\n"+
				"JSON schema:\n"+
				"{\n"+
				"  \"title\": \"string\",\n"+
				"  \"objective\": \"string\",\n"+
				"  \"bullet_points\": [\"string\",\"string\",\"string\",\"string\"],\n"+
				"  \"example\": \"string\"\n"+
				"}\n\n"+
				"Rules:\n"+
				"- Keep it practical and concise.\n"+
				"- Provide exactly 4 bullet points.\n"+
				"- Emphasize risk, discipline, and emotional control.\n"+
				"- If money is referenced, use Algerian dinar (DZD) only.\n"+
				"- Return JSON only, no markdown.",
			req.LessonNumber, req.TotalLessons, req.Level, req.Access, req.Focus, titles, questions)
	}

	return fmt.Sprintf(
		"أنشئ درس تداول واحدًا مختصرًا بصيغة JSON صارمة وباللغة العربية.\n"+
			"موقع الدرس في المنهج: الدرس %d من %d\n"+
			"المستوى: %s\n"+
			"نوع الوصول: %s\n"+
			"التركيز: %s\n"+
			"تجنب تكرار عناوين الدروس الأخيرة التالية: %s\n"+
			"تجنب تكرار أسئلة الاختبارات الأخيرة التالية: %s\n\n"+
			"مخطط JSON:\n"+
			"{\n"+
			"  \"title\": \"string\",\n"+
			"  \"objective\": \"string\",\n"+
			"  \"bullet_points\": [\"string\",\"string\",\"string\",\"string\"],\n"+
			"  \"example\": \"string\"\n"+
			"}\n\n"+
			"القواعد:\n"+
			"- اجعل الدرس مختصرًا وعمليًا.\n"+
			"- قدم 4 نقاط رئيسية بالضبط.\n"+
			"- ركز على المخاطر والانضباط والتحكم العاطفي.\n"+
			"- عند ذكر المال استخدم الدينار الجزائري (DZD/دج) فقط.\n"+
			"- أعد JSON فقط دون Markdown.",
		req.LessonNumber, req.TotalLessons, req.Level, req.Access, req.Focus, titles, questions)
}

func quizPrompt(req QuizRequest, lang string) string {
	questions := joinRecent(req.RecentQuestions, 16, " | ", lang)
	points := req.Lesson.BulletPoints
	if len(points) > 4 {
		points = points[:4]
	}
	lessonPoints := strings.Join(points, " | ")

	if lang == "en" {
		return fmt.Sprintf(
			"Create quiz questions for this lesson in strict JSON.\n"+
				"Level: %s\n"+
				"Focus: %s\n"+
				"Lesson title: %s\n"+
				"Lesson objective: %s\n"+
				"Lesson points: %s\n"+
				"Avoid repeating recent quiz questions: %s\n\n"+
				"JSON schema:\n"+
				"{\n"+
				"  \"quiz\": [\n"+
				"    {\n"+
				"      \"prompt\": \"string\",\n"+
				"      \"options\": {\"A\":\"string\",\"B\":\"string\",\"C\":\"string\",\"D\":\"string\"},\n"+
				"      \"answer\": \"A|B|C|D\",\n"+
				"      \"explanation\": \"string\"\n"+
				"    }\n"+
				"  ]\n"+
				"}\n\n"+
				"Rules:\n"+
				"- Provide exactly %d questions.\n"+
				"- Prioritize practical risk-management thinking.\n"+
				"- If money appears, use DZD only.\n"+
				"- Return JSON only.",
			req.Lesson.Level, req.Focus, req.Lesson.Title, req.Lesson.Objective, lessonPoints, questions, req.Count)
	}

	return fmt.Sprintf(
		"أنشئ أسئلة اختبار لهذا الدرس بصيغة JSON صارمة وباللغة العربية.\n"+
			"المستوى: %s\n"+
			"التركيز: %s\n"+
			"عنوان الدرس: %s\n"+
			"هدف الدرس: %s\n"+
			"نقاط الدرس: %s\n"+
			"تجنب تكرار أسئلة الاختبار الأخيرة التالية: %s\n\n"+
			"مخطط JSON:\n"+
			"{\n"+
			"  \"quiz\": [\n"+
			"    {\n"+
			"      \"prompt\": \"string\",\n"+
			"      \"options\": {\"A\":\"string\",\"B\":\"string\",\"C\":\"string\",\"D\":\"string\"},\n"+
			"      \"answer\": \"A|B|C|D\",\n"+
			"      \"explanation\": \"string\"\n"+
			"    }\n"+
			"  ]\n"+
			"}\n\n"+
			"القواعد:\n"+
			"- قدم %d سؤالًا بالضبط.\n"+
			"- كل سؤال يجب أن يختبر التفكير العملي المبني على إدارة المخاطر أولًا.\n"+
			"- إذا ظهر سياق مالي استخدم الدينار الجزائري (DZD/دج) فقط.\n"+
			"- أعد JSON فقط دون Markdown.",
		req.Lesson.Level, req.Focus, req.Lesson.Title, req.Lesson.Objective, lessonPoints, questions, req.Count)
}

func simulationPrompt(req ScenarioRequest, lang string) string {
	if lang == "en" {
		return fmt.Sprintf(
			"Create one trading simulation scenario in strict JSON.\n"+
				"Level: %s\n"+
				"Focus: %s\n\n"+
				"JSON schema:\n"+
				"{\n"+
				"  \"symbol\": \"BTCDZD|ETHDZD|SOLDZD|BNBDZD|XRPDZD\",\n"+
				"  \"entry\": 123.45,\n"+
				"  \"support\": 120.00,\n"+
				"  \"resistance\": 130.00,\n"+
				"  \"context\": \"short educational context sentence\"\n"+
				"}\n\n"+
				"Rules:\n"+
				"- Use realistic DZD-based values.\n"+
				"- Keep context educational.\n"+
				"- Return JSON only.",
			req.Level, req.Focus)
	}

	return fmt.Sprintf(
		"أنشئ سيناريو محاكاة تداول واحدًا بصيغة JSON صارمة وباللغة العربية.\n"+
			"المستوى: %s\n"+
			"التركيز: %s\n\n"+
			"مخطط JSON:\n"+
			"{\n"+
			"  \"symbol\": \"BTCDZD|ETHDZD|SOLDZD|BNBDZD|XRPDZD\",\n"+
			"  \"entry\": 123.45,\n"+
			"  \"support\": 120.00,\n"+
			"  \"resistance\": 130.00,\n"+
			"  \"context\": \"جملة سياق تعليمية قصيرة\"\n"+
			"}\n\n"+
			"القواعد:\n"+
			"- استخدم أرقامًا واقعية بالدينار الجزائري (DZD/دج).\n"+
			"- اجعل السياق تعليميًا.\n"+
			"- أعد JSON فقط.",
		req.Level, req.Focus)
}

func challengePrompt(req ScenarioRequest, lang string) string {
	if lang == "en" {
		return fmt.Sprintf(
			"Create one daily trading analysis challenge in strict JSON.\n"+
				"Level: %s\n"+
				"Focus: %s\n\n"+
				"JSON schema:\n"+
				"{\n"+
				"  \"prompt\": \"Daily Challenge: ...\",\n"+
				"  \"expected_keywords\": [\"risk\",\"invalidation\",\"confirmation\",\"structure\"]\n"+
				"}\n\n"+
				"Rules:\n"+
				"- Require analytical reasoning, not guessing.\n"+
				"- Include invalidation and risk.\n"+
				"- If prices appear, use DZD.\n"+
				"- Return exactly 4 keywords.\n"+
				"- Return JSON only.",
			req.Level, req.Focus)
	}

	return fmt.Sprintf(
		"أنشئ تحدي تحليل تداول يومي واحد بصيغة JSON صارمة وباللغة العربية.\n"+
			"المستوى: %s\n"+
			"التركيز: %s\n\n"+
			"مخطط JSON:\n"+
			"{\n"+
			"  \"prompt\": \"تحدي اليوم: ...\",\n"+
			"  \"expected_keywords\": [\"مخاطرة\",\"إبطال\",\"تأكيد\",\"هيكل\"]\n"+
			"}\n\n"+
			"القواعد:\n"+
			"- يجب أن يطلب السؤال تحليلًا ومنطقًا وليس تخمينًا.\n"+
			"- يجب أن يتضمن إبطال الفكرة والمخاطرة.\n"+
			"- إذا احتوى على أسعار فلتكن بالدينار الجزائري (DZD/دج).\n"+
			"- أعد 4 كلمات مفتاحية بالضبط.\n"+
			"- أعد JSON فقط.",
		req.Level, req.Focus)
}
