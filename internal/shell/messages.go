package shell

const (
	greetingMessage = "Привет! Выберите программу магистратуры:\n\n" +
		"Примеры вопросов, которые можно задать:\n" +
		"- У меня опыт в маркетинге, какие курсы по AI Product мне подойдут?\n" +
		"- Посоветуй выборные дисциплины, я знаю Python и немного программирую.\n" +
		"- Нужно ли профильное образование?"

	helpMessage = "Этот бот помогает выбрать программу магистратуры и подобрать курсы.\n" +
		"1. Выберите программу: 'ai' или 'ai_product'.\n" +
		"2. Задайте вопрос по программе или расскажите о своем опыте для рекомендаций по выборным дисциплинам.\n" +
		"Команды:\n" +
		"/start — начать заново\n" +
		"/help — помощь"

	selectedMessageFormat = "Вы выбрали программу '%s'. Теперь задайте ваш вопрос по обучению или расскажите о своем опыте для рекомендаций."

	choosePromptMessage = "Пожалуйста, выберите программу из списка:"

	fallbackMessage = "Извините, не могу найти ответ на этот вопрос.\n" +
		"Попробуйте задать вопрос более конкретно или расскажите о вашем опыте, чтобы я мог дать рекомендации."

	unavailableMessage = "Сервис поиска временно недоступен. Попробуйте повторить вопрос чуть позже."
)
