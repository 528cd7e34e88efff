package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstRevision - метка ревизии первой публикации формы
const FirstRevision = "v1.0"

// ParseRevision разбирает метку ревизии вида "vMAJOR.MINOR".
// Возвращает ошибку для любого другого формата.
func ParseRevision(revision string) (major, minor int, err error) {
	if !strings.HasPrefix(revision, "v") {
		return 0, 0, fmt.Errorf("invalid revision label %q", revision)
	}
	parts := strings.SplitN(revision[1:], ".", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid revision label %q", revision)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil || major < 1 {
		return 0, 0, fmt.Errorf("invalid revision label %q", revision)
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil || minor < 0 || minor > 9 {
		return 0, 0, fmt.Errorf("invalid revision label %q", revision)
	}
	return major, minor, nil
}

// NextRevision вычисляет следующую метку ревизии.
// Правило инкремента: minor += 1; при достижении 10 major += 1, minor = 0.
// Minor никогда не превышает 9 - это фиксированный контракт формата,
// на него завязана строковая сортировка ревизий.
func NextRevision(current string) (string, error) {
	major, minor, err := ParseRevision(current)
	if err != nil {
		return "", err
	}
	minor++
	if minor == 10 {
		major++
		minor = 0
	}
	return fmt.Sprintf("v%d.%d", major, minor), nil
}
