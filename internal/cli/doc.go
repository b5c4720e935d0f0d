// Package cli реализует инструмент командной строки Caseflow.
//
// CLI — клиентская утилита для взаимодействия с Caseflow API.
// Работает через HTTP, не импортирует внутренние пакеты сервиса.
//
// ## Client
//
// HTTP-клиент для Caseflow API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	cases, err := client.ListCases()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (с отступами) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: caseflow case list --json | jq .
//
// ## Commands
//
// Cobra-команды: case {list, init, show, step, status, delete,
// orchestrate, plan, events}. Группа создаётся фабричной функцией
// NewCaseCmd, принимающей clientFn и outputFn — замыкания для ленивого
// создания Client и Output после парсинга PersistentFlags.
package cli
