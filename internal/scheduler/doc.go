// Package scheduler — периодическая переоценка дел с риском.
//
// Sweep по cron-расписанию проходит по делам с RiskStatus == AT_RISK и
// перезапускает оркестратор: со временем конфликты рассасываются (виза
// прогрессирует, устройство доставлено) или требуют эскалации, и план
// должен это отражать без ручного перезапуска.
//
// Уже идущий прогон по делу — не ошибка sweep'а: ErrRunInProgress
// игнорируется, дело будет переоценено следующим тиком.
package scheduler
