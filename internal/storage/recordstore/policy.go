package recordstore

import "fmt"

// Policy — политика обработки повреждённых строк, единая для всех журналов.
type Policy string

const (
	// PolicyLenient — повреждённая строка пропускается с предупреждением в логе.
	PolicyLenient Policy = "lenient"
	// PolicyStrict — повреждённая строка делает весь Load неуспешным.
	PolicyStrict Policy = "strict"
)

// ParsePolicy преобразует строку конфигурации в Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyLenient, PolicyStrict:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("недопустимая политика %q, допустимые: lenient, strict", s)
	}
}
