// Package store реализует CaseStore — единственный источник истины
// по состоянию дел онбординга.
//
// CaseStore объединяет три роли:
//   - реестр живого состояния в памяти (map case_id → дело);
//   - мост к durable-снапшотам (write-behind, best-effort);
//   - pub/sub событий per-case с ограниченным логом повтора.
//
// Модель блокировок: реестровый RWMutex защищает индексы
// (case_id → entry, application number → case_id), у каждого дела
// свой mutex — все мутации одного дела сериализованы (логический
// single-writer), при этом дела не блокируют друг друга.
//
// Доставка событий подписчикам неблокирующая: переполненный канал
// медленного подписчика приводит к потере события для него
// (счётчик DroppedEvents / caseflow_events_dropped_total),
// но никогда не задерживает эмиссию и других подписчиков.
package store
