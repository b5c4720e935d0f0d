// Package conflict реализует чистую проверку конфликтов расписания.
//
// Detect — функция без состояния: для фиксированного дела, фиксированных
// выходов агентов и фиксированного момента времени возвращает один и
// тот же упорядоченный список конфликтов. Время передаётся аргументом,
// а не читается изнутри, — ради этой детерминированности.
//
// Семейства конфликтов и их приоритет при выборе главной рекомендации:
//
//	visa-таймлайн > доставка устройства > прочие SLA-риски
//
// Если дата старта отсутствует или не разбирается, проверки по дате
// отключаются (fail-open); проброс SLA-рисков из выходов агентов
// выполняется всегда.
package conflict
